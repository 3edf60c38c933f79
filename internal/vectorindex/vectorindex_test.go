package vectorindex

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder is a deterministic stand-in for a real embedding model:
// each dimension flags the presence of one keyword, so texts sharing a
// keyword land close together.
func keywordEmbedder() chromem.EmbeddingFunc {
	keywords := []string{"budget", "weather", "project"}
	return func(_ context.Context, text string) ([]float32, error) {
		lower := strings.ToLower(text)
		v := make([]float32, len(keywords)+1)
		v[len(keywords)] = 0.1
		for i, kw := range keywords {
			if strings.Contains(lower, kw) {
				v[i] = 1
			}
		}
		var norm float64
		for _, x := range v {
			norm += float64(x * x)
		}
		n := float32(math.Sqrt(norm))
		for i := range v {
			v[i] /= n
		}
		return v, nil
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix, err := New(keywordEmbedder())
	require.NoError(t, err)

	for _, k := range []int{0, 1, 5} {
		results, err := ix.Search(context.Background(), "anything", k)
		require.NoError(t, err)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, ix.Len())
}

func TestAddNoChunks(t *testing.T) {
	ix, err := New(keywordEmbedder())
	require.NoError(t, err)
	require.NoError(t, ix.Add(context.Background(), nil))
	assert.Equal(t, 0, ix.Len())
}

func TestSearchReturnsNearestFirst(t *testing.T) {
	ctx := context.Background()
	ix, err := New(keywordEmbedder())
	require.NoError(t, err)

	chunkA := "Project Alpha budget: $500"
	chunkB := "The weather is sunny today"
	require.NoError(t, ix.Add(ctx, []string{chunkB, chunkA}))
	assert.Equal(t, 2, ix.Len())

	results, err := ix.Search(ctx, "what is the budget?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunkA, results[0].Content)
}

func TestSearchClampsK(t *testing.T) {
	ctx := context.Background()
	ix, err := New(keywordEmbedder())
	require.NoError(t, err)
	require.NoError(t, ix.Add(ctx, []string{"budget report", "weather report"}))

	results, err := ix.Search(ctx, "budget", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	// nearest-first ordering
	assert.Equal(t, "budget report", results[0].Content)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}
