package providers

import (
	"context"
)

// Embedder converts free text into a numeric vector representation.
// All vectors produced by one embedder share a dimension and are
// L2-normalized so that cosine distance stays within [0,1].
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
