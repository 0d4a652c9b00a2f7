package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	contractx "github.com/assessor-ai/assessor/agent/contract"
)

const DefaultTopK = 6

// Index is an in-memory vector index over knowledge-base chunks. It
// satisfies contract.Retriever for the FAQ stage.
type Index struct {
	embedder Embedder

	mu      sync.RWMutex
	chunks  []string
	vectors [][]float64
}

func NewIndex(embedder Embedder) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	return &Index{embedder: embedder}, nil
}

// Load embeds the given chunks and replaces the index contents.
func (ix *Index) Load(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		ix.mu.Lock()
		ix.chunks, ix.vectors = nil, nil
		ix.mu.Unlock()
		return nil
	}

	vectors, err := ix.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("index knowledge base: %w", err)
	}

	ix.mu.Lock()
	ix.chunks = append([]string(nil), chunks...)
	ix.vectors = vectors
	ix.mu.Unlock()
	return nil
}

// LoadDocument chunks a raw document and indexes it.
func (ix *Index) LoadDocument(ctx context.Context, text string) error {
	return ix.Load(ctx, ChunkText(text, DefaultChunkSize, DefaultChunkOverlap))
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Search embeds the query and returns the k closest chunks by cosine
// similarity, best first.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]contractx.Passage, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	qv := vectors[0]

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	scored := make([]contractx.Passage, 0, len(ix.chunks))
	for i, cv := range ix.vectors {
		scored = append(scored, contractx.Passage{
			ID:    fmt.Sprintf("chunk-%d", i),
			Text:  ix.chunks[i],
			Score: cosine(qv, cv),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
