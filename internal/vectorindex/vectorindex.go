package vectorindex

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

const collectionName = "session"

// Result is one similarity search hit, nearest-first in the slices returned
// by Search.
type Result struct {
	Content    string
	Similarity float32
}

// Index is an ephemeral in-memory vector index over one document's chunks.
// It is write-once-then-query: chunks are added during ingestion and the
// index is only searched afterwards. Nothing is ever written to disk; the
// index dies with the session.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// New returns a fresh empty index bound to the given embedding function.
func New(embedFunc chromem.EmbeddingFunc) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return &Index{db: db, collection: collection}, nil
}

// Add embeds each chunk and inserts it. Insertion order does not affect
// query results.
func (ix *Index) Add(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("chunk-%d", i),
			Content: chunk,
		}
	}
	if err := ix.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Search embeds the query and returns up to k chunks nearest by cosine
// similarity. An empty index yields an empty result, never an error.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if n := ix.collection.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}
	hits, err := ix.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{Content: hit.Content, Similarity: hit.Similarity}
	}
	return results, nil
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	return ix.collection.Count()
}
