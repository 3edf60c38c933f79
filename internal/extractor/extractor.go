package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

// Format is the closed set of document formats the extractor understands.
// It is resolved once from the filename extension, before any bytes are read.
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	FormatDOCX
	FormatCSV
	FormatText
	FormatMarkdown
	FormatXLSX
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatCSV:
		return "csv"
	case FormatText:
		return "text"
	case FormatMarkdown:
		return "markdown"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// ErrUnsupportedFormat is returned when the filename extension is not in the
// accepted set. The pipeline stops for that document; nothing is indexed.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFormat maps a filename to a Format by its lowercased extension.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".csv":
		return FormatCSV
	case ".txt":
		return FormatText
	case ".md":
		return FormatMarkdown
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatUnsupported
	}
}

// Extract converts an uploaded document into plain text. On any failure it
// returns empty text and an error describing what went wrong; the error never
// carries a parser library type.
func Extract(filename string, data []byte) (string, error) {
	switch DetectFormat(filename) {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatCSV:
		return extractCSV(data)
	case FormatText, FormatMarkdown:
		return extractText(data)
	case FormatXLSX:
		return extractXLSX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// extractPDF joins per-page text with newlines. A page with no extractable
// text still contributes an empty line, so page count is preserved in the
// output structure.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// No extractable text on this page, not a fatal parse error.
			text = ""
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// extractDOCX pulls the <w:t> runs out of each <w:p> paragraph and joins
// paragraphs with newlines.
func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var paragraphs []string
	for _, para := range strings.Split(content, "</w:p>") {
		text := extractTextRuns(para)
		if strings.TrimSpace(text) == "" {
			continue
		}
		paragraphs = append(paragraphs, text)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// extractTextRuns collects the text between <w:t ...> and </w:t> tags.
func extractTextRuns(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<w:t")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		open := strings.Index(part, ">")
		if open < 0 {
			continue
		}
		part = part[open+1:]
		if end := strings.Index(part, "</w:t>"); end >= 0 {
			text.WriteString(part[:end])
		}
	}
	return text.String()
}

// extractCSV round-trips the bytes through a CSV parser, which normalizes
// quoting and line endings.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf("serializing csv: %w", err)
	}
	return buf.String(), nil
}

// extractText returns the raw bytes verbatim. Invalid UTF-8 is rejected
// rather than silently mangled.
func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8 text")
	}
	return string(data), nil
}

// extractXLSX renders each sheet as a tab-separated block under a sheet
// heading.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("reading xlsx: %w", err)
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}
