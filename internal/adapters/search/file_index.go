package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/repositories"
)

// FileIndex is a file-backed in-memory vector index using brute-force cosine
// distance. The whole index lives behind a single atomic pointer: rebuilds
// construct a new snapshot off to the side and swap it in, so readers never
// see a half-populated index.
type FileIndex struct {
	kind string
	path string
	snap atomic.Pointer[indexSnapshot]
}

type indexSnapshot struct {
	Kind      string                   `json:"kind"`
	Dimension int                      `json:"dimension"`
	Entries   []entities.EmbeddingEntry `json:"entries"`
}

// Ensure FileIndex implements VectorIndex
var _ repositories.VectorIndex = (*FileIndex)(nil)

// NewFileIndex creates a file-backed index for one record kind. Snapshots are
// persisted under dir as <kind>_store.json.
func NewFileIndex(kind, dir string) *FileIndex {
	return &FileIndex{
		kind: kind,
		path: filepath.Join(dir, kind+"_store.json"),
	}
}

// ReplaceAll swaps in a freshly built snapshot.
func (i *FileIndex) ReplaceAll(_ context.Context, entries []entities.EmbeddingEntry) error {
	dimension := 0
	for _, e := range entries {
		if e.Kind != i.kind {
			return fmt.Errorf("entry kind %q does not match index kind %q", e.Kind, i.kind)
		}
		if dimension == 0 {
			dimension = len(e.Vector)
		}
		if len(e.Vector) != dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(e.Vector), dimension)
		}
	}

	snap := &indexSnapshot{
		Kind:      i.kind,
		Dimension: dimension,
		Entries:   entries,
	}
	i.snap.Store(snap)
	return nil
}

// Query returns up to k nearest neighbors, nearest first.
func (i *FileIndex) Query(_ context.Context, vector []float64, k int) ([]entities.IndexMatch, error) {
	snap := i.snap.Load()
	if snap == nil {
		return nil, entities.ErrIndexUnavailable
	}
	if k <= 0 {
		return nil, nil
	}

	matches := make([]entities.IndexMatch, 0, len(snap.Entries))
	for _, entry := range snap.Entries {
		matches = append(matches, entities.IndexMatch{
			Entry:    entry,
			Distance: cosineDistance(entry.Vector, vector),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Persist writes the snapshot via a temp file and rename, so a crash mid-write
// never corrupts the previous snapshot.
func (i *FileIndex) Persist(_ context.Context) error {
	snap := i.snap.Load()
	if snap == nil {
		return entities.ErrIndexUnavailable
	}

	if err := os.MkdirAll(filepath.Dir(i.path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode index snapshot: %w", err)
	}

	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index snapshot: %w", err)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		return fmt.Errorf("failed to replace index snapshot: %w", err)
	}
	return nil
}

// Load restores the most recent persisted snapshot, if one exists.
func (i *FileIndex) Load(_ context.Context) (bool, error) {
	data, err := os.ReadFile(i.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read index snapshot: %w", err)
	}

	var snap indexSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, fmt.Errorf("failed to decode index snapshot: %w", err)
	}
	if snap.Kind != i.kind {
		return false, fmt.Errorf("snapshot kind %q does not match index kind %q", snap.Kind, i.kind)
	}

	i.snap.Store(&snap)
	return true, nil
}

// Ready reports whether the index has a snapshot to serve from.
func (i *FileIndex) Ready() bool {
	return i.snap.Load() != nil
}

// Stats describes the current snapshot.
func (i *FileIndex) Stats() entities.IndexStats {
	snap := i.snap.Load()
	if snap == nil {
		return entities.IndexStats{Kind: i.kind}
	}
	return entities.IndexStats{
		Kind:  i.kind,
		Count: len(snap.Entries),
		Ready: true,
	}
}

// cosineDistance assumes L2-normalized, non-negative vectors, which keeps the
// result within [0,1]. The clamp guards against floating point drift.
func cosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot := 0.0
	for idx := 0; idx < n; idx++ {
		dot += a[idx] * b[idx]
	}
	d := 1.0 - dot
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
