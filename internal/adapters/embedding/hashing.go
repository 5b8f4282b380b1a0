package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/medvend/backend/internal/domain/providers"
)

// HashingEmbedder maps text into a fixed-dimension bag-of-words vector via
// feature hashing. It needs no model, no corpus pass and no network, and the
// same text always produces the same vector, which keeps index rebuilds
// idempotent. Token counts are non-negative and the vector is L2-normalized,
// so cosine distance between any two embeddings stays within [0,1].
type HashingEmbedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
}

// Ensure HashingEmbedder implements Embedder
var _ providers.Embedder = (*HashingEmbedder)(nil)

// NewHashingEmbedder creates a hashing embedder with the given dimension.
func NewHashingEmbedder(dimension int) (*HashingEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dimension)
	}
	return &HashingEmbedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *HashingEmbedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced vectors.
func (e *HashingEmbedder) Dimension() int { return e.dimension }

// Embed returns a normalized vector for the given text.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, e.dimension)
	for _, token := range e.tokenize(text) {
		vector[e.bucket(token)]++
	}

	norm := 0.0
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vector {
			vector[idx] /= norm
		}
	}
	return vector, nil
}

// EmbedBatch embeds each text in order.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for idx, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[idx] = vector
	}
	return vectors, nil
}

func (e *HashingEmbedder) tokenize(text string) []string {
	return e.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func (e *HashingEmbedder) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}
