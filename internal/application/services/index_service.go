package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/internal/domain/repositories"
	apperrors "github.com/medvend/backend/pkg/errors"
)

// IndexService builds and maintains the two embedding indexes (medications
// and symptoms) from the catalog. A rebuild always embeds the full catalog
// and swaps each index wholesale, so repeated rebuilds over an unchanged
// catalog converge to the same snapshot.
type IndexService struct {
	catalogRepo     repositories.CatalogRepository
	embedder        providers.Embedder
	medicationIndex repositories.VectorIndex
	symptomIndex    repositories.VectorIndex
}

func NewIndexService(
	catalogRepo repositories.CatalogRepository,
	embedder providers.Embedder,
	medicationIndex repositories.VectorIndex,
	symptomIndex repositories.VectorIndex,
) *IndexService {
	return &IndexService{
		catalogRepo:     catalogRepo,
		embedder:        embedder,
		medicationIndex: medicationIndex,
		symptomIndex:    symptomIndex,
	}
}

// MedicationDescription renders the canonical text a medication is embedded
// from. Field order is fixed; optional fields are skipped when empty so the
// same catalog row always produces the same text.
func MedicationDescription(m *entities.Medication) string {
	parts := []string{m.Name}
	if m.ActiveIngredient != "" {
		parts = append(parts, "active ingredient: "+m.ActiveIngredient)
	}
	if m.TreatmentClass != "" {
		parts = append(parts, "treats: "+m.TreatmentClass)
	}
	if m.Form != "" {
		parts = append(parts, "form: "+m.Form)
	}
	if m.SideEffects != "" {
		parts = append(parts, "side effects: "+m.SideEffects)
	}
	if m.Contraindications != "" {
		parts = append(parts, "contraindications: "+m.Contraindications)
	}
	if len(m.AllergyTags) > 0 {
		parts = append(parts, "allergy tags: "+strings.Join(m.AllergyTags, ", "))
	}
	if m.IsSupporting {
		parts = append(parts, "role: supporting")
	} else {
		parts = append(parts, "role: main")
	}
	return strings.Join(parts, ". ")
}

// BuildFromCatalog embeds the full catalog and replaces both indexes. Each
// index is swapped atomically, so readers never observe a partial rebuild.
func (s *IndexService) BuildFromCatalog(ctx context.Context) error {
	medications, err := s.catalogRepo.ListMedications(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to list medications for indexing", err)
	}

	medEntries, err := s.buildMedicationEntries(ctx, medications)
	if err != nil {
		return err
	}
	if err := s.medicationIndex.ReplaceAll(ctx, medEntries); err != nil {
		return apperrors.NewInternalError("failed to replace medication index", err)
	}

	symptoms, err := s.catalogRepo.ListSymptoms(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to list symptoms for indexing", err)
	}

	symptomEntries, err := s.buildSymptomEntries(ctx, symptoms)
	if err != nil {
		return err
	}
	if err := s.symptomIndex.ReplaceAll(ctx, symptomEntries); err != nil {
		return apperrors.NewInternalError("failed to replace symptom index", err)
	}

	log.Info().
		Int("medications", len(medEntries)).
		Int("symptoms", len(symptomEntries)).
		Str("embedder", s.embedder.Name()).
		Msg("embedding indexes rebuilt")

	return nil
}

func (s *IndexService) buildMedicationEntries(ctx context.Context, medications []*entities.Medication) ([]entities.EmbeddingEntry, error) {
	texts := make([]string, len(medications))
	for i, m := range medications {
		texts[i] = MedicationDescription(m)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to embed medication descriptions", err)
	}
	if len(vectors) != len(medications) {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("embedder returned %d vectors for %d medications", len(vectors), len(medications)), nil)
	}

	entries := make([]entities.EmbeddingEntry, len(medications))
	for i, m := range medications {
		entries[i] = entities.EmbeddingEntry{
			RecordID: m.ID,
			Kind:     entities.EntryKindMedication,
			Text:     texts[i],
			Vector:   vectors[i],
			Meta: entities.CandidateMeta{
				Name:             m.Name,
				ActiveIngredient: m.ActiveIngredient,
				TreatmentClass:   m.TreatmentClass,
				Stock:            m.Stock,
				AllergyTags:      m.AllergyTags,
				IsSupporting:     m.IsSupporting,
			},
		}
	}
	return entries, nil
}

func (s *IndexService) buildSymptomEntries(ctx context.Context, symptoms []*entities.Symptom) ([]entities.EmbeddingEntry, error) {
	texts := make([]string, len(symptoms))
	for i, sym := range symptoms {
		texts[i] = sym.Name
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to embed symptoms", err)
	}
	if len(vectors) != len(symptoms) {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("embedder returned %d vectors for %d symptoms", len(vectors), len(symptoms)), nil)
	}

	entries := make([]entities.EmbeddingEntry, len(symptoms))
	for i, sym := range symptoms {
		entries[i] = entities.EmbeddingEntry{
			RecordID: sym.ID,
			Kind:     entities.EntryKindSymptom,
			Text:     texts[i],
			Vector:   vectors[i],
			Meta:     entities.CandidateMeta{Name: sym.Name},
		}
	}
	return entries, nil
}

// Initialize restores persisted snapshots when both exist, otherwise rebuilds
// from the catalog and persists the result.
func (s *IndexService) Initialize(ctx context.Context) error {
	medLoaded, err := s.medicationIndex.Load(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load medication index", err)
	}
	symLoaded, err := s.symptomIndex.Load(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to load symptom index", err)
	}
	if medLoaded && symLoaded {
		log.Info().Msg("embedding indexes restored from snapshots")
		return nil
	}

	if err := s.BuildFromCatalog(ctx); err != nil {
		return err
	}
	return s.Persist(ctx)
}

// Rebuild re-embeds the catalog and persists the fresh snapshots.
func (s *IndexService) Rebuild(ctx context.Context) error {
	if err := s.BuildFromCatalog(ctx); err != nil {
		return err
	}
	return s.Persist(ctx)
}

// Persist writes both index snapshots to durable storage.
func (s *IndexService) Persist(ctx context.Context) error {
	if err := s.medicationIndex.Persist(ctx); err != nil {
		return apperrors.NewInternalError("failed to persist medication index", err)
	}
	if err := s.symptomIndex.Persist(ctx); err != nil {
		return apperrors.NewInternalError("failed to persist symptom index", err)
	}
	return nil
}

// Stats reports both indexes, medications first.
func (s *IndexService) Stats() []entities.IndexStats {
	return []entities.IndexStats{
		s.medicationIndex.Stats(),
		s.symptomIndex.Stats(),
	}
}
