package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/repositories"
	tsclient "github.com/medvend/backend/internal/infrastructure/clients/typesense"
)

// TypesenseIndex implements the vector index port on a Typesense server.
// Each rebuild creates a fresh physical collection and repoints a collection
// alias at it, which gives the same atomic-swap guarantee as the file index.
// Durability is server-side, so Persist is a no-op and Load only checks that
// the alias already resolves.
type TypesenseIndex struct {
	client *tsclient.Client
	kind   string
	alias  string

	mu    sync.RWMutex
	ready bool
	count int
}

// Ensure TypesenseIndex implements VectorIndex
var _ repositories.VectorIndex = (*TypesenseIndex)(nil)

// NewTypesenseIndex creates a Typesense-backed index for one record kind.
func NewTypesenseIndex(client *tsclient.Client, kind string) *TypesenseIndex {
	return &TypesenseIndex{
		client: client,
		kind:   kind,
		alias:  kind + "_index",
	}
}

// ReplaceAll builds a new collection, fills it and swaps the alias.
func (i *TypesenseIndex) ReplaceAll(ctx context.Context, entries []entities.EmbeddingEntry) error {
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
	if dimension == 0 {
		dimension = 1
	}

	collectionName := fmt.Sprintf("%s_%d", i.alias, time.Now().UnixNano())
	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "record_id", Type: "int64"},
			{Name: "text", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "active_ingredient", Type: "string", Optional: pointer.True()},
			{Name: "treatment_class", Type: "string", Optional: pointer.True(), Facet: pointer.True()},
			{Name: "stock", Type: "int32"},
			{Name: "allergy_tags", Type: "string[]", Optional: pointer.True()},
			{Name: "is_supporting", Type: "bool"},
			{Name: "vector", Type: "float[]", NumDim: pointer.Int(dimension)},
		},
	}

	if _, err := i.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	for _, entry := range entries {
		document := map[string]interface{}{
			"id":                strconv.FormatInt(entry.RecordID, 10),
			"record_id":         entry.RecordID,
			"text":              entry.Text,
			"name":              entry.Meta.Name,
			"active_ingredient": entry.Meta.ActiveIngredient,
			"treatment_class":   entry.Meta.TreatmentClass,
			"stock":             entry.Meta.Stock,
			"allergy_tags":      entry.Meta.AllergyTags,
			"is_supporting":     entry.Meta.IsSupporting,
			"vector":            entry.Vector,
		}
		if _, err := i.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
			return fmt.Errorf("failed to index %s entry %d: %w", i.kind, entry.RecordID, err)
		}
	}

	// Find the previous physical collection before repointing the alias
	previous := ""
	if alias, err := i.client.Client().Alias(i.alias).Retrieve(ctx); err == nil {
		previous = alias.CollectionName
	}

	if _, err := i.client.Client().Aliases().Upsert(ctx, i.alias, &api.CollectionAliasSchema{CollectionName: collectionName}); err != nil {
		return fmt.Errorf("failed to swap typesense alias: %w", err)
	}

	if previous != "" && previous != collectionName {
		if _, err := i.client.Client().Collection(previous).Delete(ctx); err != nil {
			// Stale collection is garbage, not corruption; the alias already
			// points at the new one.
			log.Warn().Err(err).Str("collection", previous).Msg("failed to drop stale collection")
		}
	}

	i.mu.Lock()
	i.ready = true
	i.count = len(entries)
	i.mu.Unlock()
	return nil
}

// Query performs a nearest-neighbor vector search through the alias.
func (i *TypesenseIndex) Query(ctx context.Context, vector []float64, k int) ([]entities.IndexMatch, error) {
	if !i.Ready() {
		return nil, entities.ErrIndexUnavailable
	}
	if k <= 0 {
		return nil, nil
	}

	parts := make([]string, len(vector))
	for idx, v := range vector {
		parts[idx] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	vectorQuery := fmt.Sprintf("vector:([%s], k:%d)", strings.Join(parts, ","), k)

	searchParams := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		QueryBy:     pointer.String("text"),
		PerPage:     pointer.Int(k),
		VectorQuery: pointer.String(vectorQuery),
	}

	result, err := i.client.Client().Collection(i.alias).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s index: %w", i.kind, err)
	}
	if result.Hits == nil {
		return nil, nil
	}

	matches := make([]entities.IndexMatch, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		entry := entities.EmbeddingEntry{
			Kind: i.kind,
			Meta: entities.CandidateMeta{},
		}
		if v, ok := doc["record_id"].(float64); ok {
			entry.RecordID = int64(v)
		}
		if v, ok := doc["text"].(string); ok {
			entry.Text = v
		}
		if v, ok := doc["name"].(string); ok {
			entry.Meta.Name = v
		}
		if v, ok := doc["active_ingredient"].(string); ok {
			entry.Meta.ActiveIngredient = v
		}
		if v, ok := doc["treatment_class"].(string); ok {
			entry.Meta.TreatmentClass = v
		}
		if v, ok := doc["stock"].(float64); ok {
			entry.Meta.Stock = int(v)
		}
		if v, ok := doc["is_supporting"].(bool); ok {
			entry.Meta.IsSupporting = v
		}
		if tags, ok := doc["allergy_tags"].([]interface{}); ok {
			for _, tag := range tags {
				if s, ok := tag.(string); ok {
					entry.Meta.AllergyTags = append(entry.Meta.AllergyTags, s)
				}
			}
		}

		distance := 0.0
		if hit.VectorDistance != nil {
			distance = float64(*hit.VectorDistance)
		}
		if distance < 0 {
			distance = 0
		}
		if distance > 1 {
			distance = 1
		}

		matches = append(matches, entities.IndexMatch{Entry: entry, Distance: distance})
	}
	return matches, nil
}

// Persist is a no-op; Typesense persists server-side.
func (i *TypesenseIndex) Persist(_ context.Context) error {
	if !i.Ready() {
		return entities.ErrIndexUnavailable
	}
	return nil
}

// Load checks whether a previously built collection is already available.
func (i *TypesenseIndex) Load(ctx context.Context) (bool, error) {
	alias, err := i.client.Client().Alias(i.alias).Retrieve(ctx)
	if err != nil || alias.CollectionName == "" {
		return false, nil
	}

	collection, err := i.client.Client().Collection(alias.CollectionName).Retrieve(ctx)
	if err != nil {
		return false, nil
	}

	count := 0
	if collection.NumDocuments != nil {
		count = int(*collection.NumDocuments)
	}

	i.mu.Lock()
	i.ready = true
	i.count = count
	i.mu.Unlock()
	return true, nil
}

// Ready reports whether the alias points at a built collection.
func (i *TypesenseIndex) Ready() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.ready
}

// Stats describes the current collection.
func (i *TypesenseIndex) Stats() entities.IndexStats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return entities.IndexStats{
		Kind:  i.kind,
		Count: i.count,
		Ready: i.ready,
	}
}
