package session

import (
	"sync"

	"docchat/internal/helper"
	"docchat/internal/vectorindex"
)

// Turn is one question/answer pair. Answer is empty while generation for the
// turn is in flight.
type Turn struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Session aggregates everything a single conversation owns: the turn history,
// the processed-document flag, and the optional vector index. All of it lives
// in memory and is cleared as one unit by Reset.
type Session struct {
	mu                sync.Mutex
	turns             []Turn
	documentProcessed bool
	index             *vectorindex.Index
}

func New() *Session {
	return &Session{}
}

// BeginTurn appends a pending turn with an empty answer and returns its ID.
func (s *Session) BeginTurn(question string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := helper.GenerateUUID()
	if err != nil {
		id = ""
	}
	s.turns = append(s.turns, Turn{ID: id, Question: question})
	return id
}

// CompleteTurn fills the answer of the most recent pending turn.
func (s *Session) CompleteTurn(answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) == 0 {
		return
	}
	s.turns[len(s.turns)-1].Answer = answer
}

// AbortTurn removes the most recent turn if its answer is still empty. Used
// when generation fails, so the history never carries a permanently
// unanswered entry.
func (s *Session) AbortTurn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.turns); n > 0 && s.turns[n-1].Answer == "" {
		s.turns = s.turns[:n-1]
	}
}

// Turns returns a copy of the conversation history.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Generating reports whether the last turn is still waiting for its answer.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.turns)
	return n > 0 && s.turns[n-1].Answer == ""
}

// SetIndex installs a freshly built index and marks the document processed.
// A new document replaces the previous index wholesale.
func (s *Session) SetIndex(ix *vectorindex.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = ix
	s.documentProcessed = true
}

// Index returns the active index, or nil when no document is processed.
func (s *Session) Index() *vectorindex.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) DocumentProcessed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentProcessed
}

// Reset clears turns, the processed flag, and the index together.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.documentProcessed = false
	s.index = nil
}
