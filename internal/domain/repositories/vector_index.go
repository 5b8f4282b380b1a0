package repositories

import (
	"context"

	"github.com/medvend/backend/internal/domain/entities"
)

// VectorIndex is the port for one embedding index holding a single record
// kind. Implementations must replace their contents atomically: concurrent
// readers observe either the complete old snapshot or the complete new one,
// never a partial index.
type VectorIndex interface {
	// ReplaceAll swaps in a freshly built set of entries, discarding any
	// previous index for this kind.
	ReplaceAll(ctx context.Context, entries []entities.EmbeddingEntry) error

	// Query returns up to k nearest neighbors ordered nearest-first, with
	// distances bounded in [0,1]. Returns entities.ErrIndexUnavailable before
	// the first successful ReplaceAll/Load.
	Query(ctx context.Context, vector []float64, k int) ([]entities.IndexMatch, error)

	// Persist writes the current snapshot to durable storage, replacing any
	// prior snapshot wholesale.
	Persist(ctx context.Context) error

	// Load restores the most recent persisted snapshot. The boolean reports
	// whether a snapshot existed.
	Load(ctx context.Context) (bool, error)

	// Ready reports whether the index can serve queries.
	Ready() bool

	// Stats describes the current snapshot.
	Stats() entities.IndexStats
}
