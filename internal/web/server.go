package web

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"docchat/internal/extractor"
	"docchat/internal/llmservice"
	"docchat/internal/rag"
	"docchat/internal/session"
)

//go:embed static/index.html
var indexHTML []byte

// Server is the single-page chat surface over the pipeline.
type Server struct {
	e   *echo.Echo
	rag *rag.RAG
	md  goldmark.Markdown
}

func NewServer(pipeline *rag.RAG) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		e:   e,
		rag: pipeline,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}

	e.GET("/", s.index)
	api := e.Group("/api")
	api.POST("/documents", s.uploadDocument)
	api.POST("/chat", s.chat)
	api.GET("/history", s.history)
	api.GET("/status", s.status)
	api.POST("/reset", s.reset)
	return s
}

func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("Starting server")
	return s.e.Start(addr)
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

type uploadResponse struct {
	Chunks            int  `json:"chunks"`
	DocumentProcessed bool `json:"document_processed"`
}

func (s *Server) uploadDocument(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file upload")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	chunks, err := s.rag.ProcessDocument(c.Request().Context(), fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, uploadResponse{
		Chunks:            chunks,
		DocumentProcessed: s.rag.DocumentProcessed(),
	})
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html"`
}

func (s *Server) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question must not be empty")
	}

	answer, err := s.rag.Ask(c.Request().Context(), req.Question)
	if err != nil {
		if errors.Is(err, llmservice.ErrGenerationFailure) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, chatResponse{
		Question:   req.Question,
		Answer:     answer,
		AnswerHTML: s.renderMarkdown(answer),
	})
}

type historyTurn struct {
	session.Turn
	AnswerHTML string `json:"answer_html"`
}

func (s *Server) history(c echo.Context) error {
	turns := s.rag.History()
	out := make([]historyTurn, len(turns))
	for i, turn := range turns {
		out[i] = historyTurn{Turn: turn, AnswerHTML: s.renderMarkdown(turn.Answer)}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{
		"document_processed": s.rag.DocumentProcessed(),
	})
}

func (s *Server) reset(c echo.Context) error {
	s.rag.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(text), &buf); err != nil {
		log.Warn().Err(err).Msg("Error rendering markdown")
		return text
	}
	return buf.String()
}
