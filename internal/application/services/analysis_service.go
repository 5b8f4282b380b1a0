package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
)

const analysisContextSize = 8

// AnalysisService runs symptom analysis: retrieve relevant in-stock
// medications, hand the context to the reasoning provider, and return its
// recommendation. This is the single fallback boundary — any provider
// failure, including an invalid payload, degrades to the deterministic
// fallback recommendation and never propagates upward.
type AnalysisService struct {
	retrieval *RetrievalService
	reasoning providers.ReasoningProvider
}

// NewAnalysisService accepts a nil reasoning provider; analysis then always
// answers with the fallback.
func NewAnalysisService(retrieval *RetrievalService, reasoning providers.ReasoningProvider) *AnalysisService {
	return &AnalysisService{
		retrieval: retrieval,
		reasoning: reasoning,
	}
}

// AnalyzeSymptoms produces a recommendation for the patient's symptoms.
// Retrieval is restricted to in-stock medications with the patient's
// allergies excluded, so the provider only ever sees dispensable options.
func (s *AnalysisService) AnalyzeSymptoms(ctx context.Context, profile entities.PatientProfile) (*entities.Recommendation, error) {
	filters := entities.SearchFilters{
		InStockOnly:      true,
		ExcludeAllergies: profile.Allergies,
	}

	candidates, err := s.retrieval.Search(ctx, profile.Symptoms, analysisContextSize, filters)
	if err != nil {
		return nil, err
	}
	medContext := s.retrieval.BuildContext(candidates)

	if s.reasoning == nil {
		return entities.FallbackRecommendation(), nil
	}

	recommendation, err := s.reasoning.Analyze(ctx, profile, medContext)
	if err != nil {
		log.Warn().Err(err).Msg("reasoning provider failed, using fallback recommendation")
		return entities.FallbackRecommendation(), nil
	}
	if err := recommendation.Validate(); err != nil {
		log.Warn().Err(err).Msg("reasoning provider returned invalid payload, using fallback recommendation")
		return entities.FallbackRecommendation(), nil
	}

	recommendation.AIAvailable = true
	return recommendation, nil
}
