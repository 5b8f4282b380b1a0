package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/medvend/backend/internal/domain/entities"
)

func feverProfile() entities.PatientProfile {
	return entities.PatientProfile{
		Gender:   "female",
		Age:      30,
		Symptoms: "fever and headache",
	}
}

func TestAnalysisService_NilProviderFallsBack(t *testing.T) {
	retrieval := newBuiltRetrieval(t)
	service := NewAnalysisService(retrieval, nil)

	rec, err := service.AnalyzeSymptoms(context.Background(), feverProfile())
	require.NoError(t, err)

	assert.False(t, rec.AIAvailable)
	assert.True(t, rec.ShouldSeeDoctor)
	assert.Empty(t, rec.MainMedicines)
	assert.Zero(t, rec.DosesPerDay)
	assert.Zero(t, rec.TotalDays)
}

func TestAnalysisService_ProviderErrorFallsBack(t *testing.T) {
	retrieval := newBuiltRetrieval(t)
	provider := new(MockReasoningProvider)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream timeout"))

	service := NewAnalysisService(retrieval, provider)
	rec, err := service.AnalyzeSymptoms(context.Background(), feverProfile())
	require.NoError(t, err)

	assert.False(t, rec.AIAvailable)
	assert.True(t, rec.ShouldSeeDoctor)
}

func TestAnalysisService_InvalidPayloadFallsBack(t *testing.T) {
	retrieval := newBuiltRetrieval(t)
	provider := new(MockReasoningProvider)
	// medicine named but no reasoning and an out-of-range schedule
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything).
		Return(&entities.Recommendation{
			MainMedicines: []entities.MedicineItem{{Name: "Paracetamol", QuantityPerDose: 2}},
			DosesPerDay:   9,
			TotalDays:     1,
		}, nil)

	service := NewAnalysisService(retrieval, provider)
	rec, err := service.AnalyzeSymptoms(context.Background(), feverProfile())
	require.NoError(t, err)

	assert.False(t, rec.AIAvailable)
	assert.Empty(t, rec.MainMedicines)
}

func TestAnalysisService_ValidRecommendation(t *testing.T) {
	retrieval := newBuiltRetrieval(t)
	provider := new(MockReasoningProvider)

	var capturedContext string
	provider.On("Analyze", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			capturedContext = args.String(2)
		}).
		Return(&entities.Recommendation{
			MainMedicines:           []entities.MedicineItem{{Name: "Paracetamol", QuantityPerDose: 2, Reason: "fever"}},
			DosesPerDay:             3,
			TotalDays:               2,
			RecommendationReasoning: "classic fever presentation",
			Diagnosis:               "common cold",
			SeverityLevel:           "mild",
		}, nil)

	service := NewAnalysisService(retrieval, provider)
	rec, err := service.AnalyzeSymptoms(context.Background(), feverProfile())
	require.NoError(t, err)

	assert.True(t, rec.AIAvailable)
	assert.Equal(t, "common cold", rec.Diagnosis)
	require.Len(t, rec.MainMedicines, 1)

	// the provider only ever sees dispensable, in-stock medications
	assert.Contains(t, capturedContext, "Paracetamol")
	assert.NotContains(t, capturedContext, "Oresol")
}

func TestAnalysisService_AllergiesExcludedFromContext(t *testing.T) {
	retrieval := newBuiltRetrieval(t)
	provider := new(MockReasoningProvider)

	var capturedContext string
	provider.On("Analyze", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			capturedContext = args.String(2)
		}).
		Return(nil, errors.New("not relevant here"))

	profile := feverProfile()
	profile.Allergies = []string{"Antihistamine"}

	service := NewAnalysisService(retrieval, provider)
	_, err := service.AnalyzeSymptoms(context.Background(), profile)
	require.NoError(t, err)

	assert.NotContains(t, capturedContext, "Loratadine")
}
