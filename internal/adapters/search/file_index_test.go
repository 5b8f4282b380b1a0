package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/medvend/backend/internal/domain/entities"
)

func testEntries() []entities.EmbeddingEntry {
	return []entities.EmbeddingEntry{
		{RecordID: 1, Kind: entities.EntryKindMedication, Text: "a", Vector: []float64{1, 0, 0},
			Meta: entities.CandidateMeta{Name: "A", Stock: 10}},
		{RecordID: 2, Kind: entities.EntryKindMedication, Text: "b", Vector: []float64{0, 1, 0},
			Meta: entities.CandidateMeta{Name: "B", Stock: 0, AllergyTags: []string{"x"}}},
		{RecordID: 3, Kind: entities.EntryKindMedication, Text: "c", Vector: []float64{0.7071067811865476, 0.7071067811865476, 0},
			Meta: entities.CandidateMeta{Name: "C", Stock: 5}},
	}
}

func TestFileIndex_QueryBeforeBuild(t *testing.T) {
	index := NewFileIndex(entities.EntryKindMedication, t.TempDir())

	assert.False(t, index.Ready())
	_, err := index.Query(context.Background(), []float64{1, 0, 0}, 3)
	assert.ErrorIs(t, err, entities.ErrIndexUnavailable)
}

func TestFileIndex_QueryOrderingAndBounds(t *testing.T) {
	index := NewFileIndex(entities.EntryKindMedication, t.TempDir())
	ctx := context.Background()
	require.NoError(t, index.ReplaceAll(ctx, testEntries()))

	matches, err := index.Query(ctx, []float64{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// nearest first: identical vector, then the 45° one, then orthogonal
	assert.Equal(t, int64(1), matches[0].Entry.RecordID)
	assert.Equal(t, int64(3), matches[1].Entry.RecordID)
	assert.Equal(t, int64(2), matches[2].Entry.RecordID)

	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Distance, 0.0)
		assert.LessOrEqual(t, m.Distance, 1.0)
	}
	assert.InDelta(t, 0.0, matches[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, matches[2].Distance, 1e-9)
}

func TestFileIndex_QueryTruncatesToK(t *testing.T) {
	index := NewFileIndex(entities.EntryKindMedication, t.TempDir())
	ctx := context.Background()
	require.NoError(t, index.ReplaceAll(ctx, testEntries()))

	matches, err := index.Query(ctx, []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// asking for more than exists returns what exists
	matches, err = index.Query(ctx, []float64{1, 0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestFileIndex_ReplaceAllSwapsWholesale(t *testing.T) {
	index := NewFileIndex(entities.EntryKindMedication, t.TempDir())
	ctx := context.Background()
	require.NoError(t, index.ReplaceAll(ctx, testEntries()))

	replacement := []entities.EmbeddingEntry{
		{RecordID: 9, Kind: entities.EntryKindMedication, Text: "z", Vector: []float64{0, 0, 1},
			Meta: entities.CandidateMeta{Name: "Z"}},
	}
	require.NoError(t, index.ReplaceAll(ctx, replacement))

	matches, err := index.Query(ctx, []float64{0, 0, 1}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(9), matches[0].Entry.RecordID)
}

func TestFileIndex_PersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	original := NewFileIndex(entities.EntryKindMedication, dir)
	require.NoError(t, original.ReplaceAll(ctx, testEntries()))
	require.NoError(t, original.Persist(ctx))

	restored := NewFileIndex(entities.EntryKindMedication, dir)
	loaded, err := restored.Load(ctx)
	require.NoError(t, err)
	require.True(t, loaded)
	assert.True(t, restored.Ready())

	query := []float64{0.6, 0.8, 0}
	want, err := original.Query(ctx, query, 3)
	require.NoError(t, err)
	got, err := restored.Query(ctx, query, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileIndex_LoadWithoutSnapshot(t *testing.T) {
	index := NewFileIndex(entities.EntryKindMedication, t.TempDir())

	loaded, err := index.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.False(t, index.Ready())
}

func TestFileIndex_PersistLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	index := NewFileIndex(entities.EntryKindMedication, dir)
	require.NoError(t, index.ReplaceAll(ctx, testEntries()))
	require.NoError(t, index.Persist(ctx))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, entities.EntryKindMedication+"_store.json", filepath.Base(files[0].Name()))
}

func TestFileIndex_Stats(t *testing.T) {
	index := NewFileIndex(entities.EntryKindSymptom, t.TempDir())

	stats := index.Stats()
	assert.Equal(t, entities.EntryKindSymptom, stats.Kind)
	assert.Zero(t, stats.Count)
	assert.False(t, stats.Ready)

	require.NoError(t, index.ReplaceAll(context.Background(), testEntries()))
	stats = index.Stats()
	assert.Equal(t, 3, stats.Count)
	assert.True(t, stats.Ready)
}
