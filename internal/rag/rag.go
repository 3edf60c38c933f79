package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"docchat/internal/chunker"
	"docchat/internal/extractor"
	"docchat/internal/llmservice"
	"docchat/internal/prompt"
	"docchat/internal/session"
	"docchat/internal/vectorindex"
)

// RAG runs the retrieval-and-chat pipeline for one session. Its mutex keeps
// a single operation in flight per session; callers block until the current
// document processing or generation finishes.
type RAG struct {
	mu        sync.Mutex
	session   *session.Session
	chunker   *chunker.Chunker
	embedFunc chromem.EmbeddingFunc
	composer  *prompt.Composer
	generator llmservice.Generator
	topK      int
}

func NewRAG(sess *session.Session, ch *chunker.Chunker, embedFunc chromem.EmbeddingFunc, composer *prompt.Composer, generator llmservice.Generator, topK int) *RAG {
	return &RAG{
		session:   sess,
		chunker:   ch,
		embedFunc: embedFunc,
		composer:  composer,
		generator: generator,
		topK:      topK,
	}
}

// ProcessDocument extracts, chunks, and indexes an uploaded document,
// replacing any previously processed document for the session. It returns
// the number of indexed chunks. Extracted text that comes back empty builds
// nothing and leaves the session ungrounded.
func (r *RAG) ProcessDocument(ctx context.Context, filename string, data []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text, err := extractor.Extract(filename, data)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	chunks, err := r.chunker.Chunk(text)
	if err != nil {
		return 0, fmt.Errorf("chunking document: %w", err)
	}

	index, err := vectorindex.New(r.embedFunc)
	if err != nil {
		return 0, err
	}
	if err := index.Add(ctx, chunks); err != nil {
		return 0, err
	}

	r.session.SetIndex(index)
	log.Info().Str("file", filename).Int("chunks", len(chunks)).Msg("Document processed")
	return len(chunks), nil
}

// Ask runs one chat turn: record the question, retrieve context when a
// document is indexed, compose the prompt, generate the answer, and fill it
// into the turn. On failure the pending turn is removed and the error
// returned, so the history never holds a dangling question.
func (r *RAG) Ask(ctx context.Context, question string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.session.BeginTurn(question)

	var contextChunks []string
	grounded := false
	if index := r.session.Index(); index != nil {
		grounded = true
		results, err := index.Search(ctx, question, r.topK)
		if err != nil {
			r.session.AbortTurn()
			return "", err
		}
		for _, res := range results {
			contextChunks = append(contextChunks, res.Content)
		}
	}

	composed := r.composer.Compose(question, grounded, contextChunks)
	answer, err := r.generator.Generate(ctx, composed)
	if err != nil {
		r.session.AbortTurn()
		return "", err
	}

	r.session.CompleteTurn(answer)
	return answer, nil
}

// Reset clears the whole session: history, processed flag, and index.
func (r *RAG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.Reset()
}

// History returns a copy of the conversation so far.
func (r *RAG) History() []session.Turn {
	return r.session.Turns()
}

// DocumentProcessed reports whether a document is grounding this session.
func (r *RAG) DocumentProcessed() bool {
	return r.session.DocumentProcessed()
}
