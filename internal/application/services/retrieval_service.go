package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/internal/domain/repositories"
	apperrors "github.com/medvend/backend/pkg/errors"
)

// RetrievalService answers semantic queries against the embedding indexes
// and renders candidate lists into the context block consumed by the
// reasoning step.
type RetrievalService struct {
	embedder        providers.Embedder
	medicationIndex repositories.VectorIndex
	symptomIndex    repositories.VectorIndex
}

func NewRetrievalService(
	embedder providers.Embedder,
	medicationIndex repositories.VectorIndex,
	symptomIndex repositories.VectorIndex,
) *RetrievalService {
	return &RetrievalService{
		embedder:        embedder,
		medicationIndex: medicationIndex,
		symptomIndex:    symptomIndex,
	}
}

// Search returns up to k medications ranked by similarity, after hard
// filtering. The index is over-fetched at 2k so that filtered-out hits do not
// starve the result; fewer than k survivors (including zero) is a valid
// outcome, not an error.
func (s *RetrievalService) Search(ctx context.Context, queryText string, k int, filters entities.SearchFilters) ([]entities.RetrievalCandidate, error) {
	if k <= 0 {
		return nil, apperrors.NewValidationError("k must be positive")
	}

	vector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to embed query", err)
	}

	matches, err := s.medicationIndex.Query(ctx, vector, 2*k)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(filters.ExcludeAllergies))
	for _, allergy := range filters.ExcludeAllergies {
		excluded[strings.ToLower(strings.TrimSpace(allergy))] = struct{}{}
	}

	candidates := make([]entities.RetrievalCandidate, 0, k)
	for _, match := range matches {
		if len(candidates) == k {
			break
		}
		meta := match.Entry.Meta
		if filters.InStockOnly && meta.Stock <= 0 {
			continue
		}
		if hasAllergyOverlap(meta.AllergyTags, excluded) {
			continue
		}
		candidates = append(candidates, entities.RetrievalCandidate{
			ID:               match.Entry.RecordID,
			Name:             meta.Name,
			ActiveIngredient: meta.ActiveIngredient,
			TreatmentClass:   meta.TreatmentClass,
			Stock:            meta.Stock,
			AllergyTags:      meta.AllergyTags,
			IsSupporting:     meta.IsSupporting,
			RelevanceScore:   1 - match.Distance,
		})
	}
	return candidates, nil
}

func hasAllergyOverlap(tags []string, excluded map[string]struct{}) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, tag := range tags {
		if _, hit := excluded[strings.ToLower(strings.TrimSpace(tag))]; hit {
			return true
		}
	}
	return false
}

// SearchSymptoms finds catalog symptoms similar to free-text input.
func (s *RetrievalService) SearchSymptoms(ctx context.Context, text string, k int) ([]entities.SymptomMatch, error) {
	if k <= 0 {
		return nil, apperrors.NewValidationError("k must be positive")
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to embed symptom text", err)
	}

	matches, err := s.symptomIndex.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	results := make([]entities.SymptomMatch, len(matches))
	for i, match := range matches {
		results[i] = entities.SymptomMatch{
			ID:    match.Entry.RecordID,
			Name:  match.Entry.Meta.Name,
			Score: 1 - match.Distance,
		}
	}
	return results, nil
}

// BuildContext renders ranked candidates into the text block handed to the
// reasoning provider. An empty candidate list renders as an empty string.
func (s *RetrievalService) BuildContext(candidates []entities.RetrievalCandidate) string {
	if len(candidates) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Available medications relevant to the symptoms:\n")
	for _, c := range candidates {
		class := c.TreatmentClass
		if class == "" {
			class = "general"
		}
		fmt.Fprintf(&b, "• %s - %s - relevance: %.2f\n", c.Name, class, c.RelevanceScore)
	}
	return b.String()
}
