package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/medvend/backend/internal/application/services"
	"github.com/medvend/backend/internal/domain/entities"
	apperrors "github.com/medvend/backend/pkg/errors"
)

type stubCatalogRepo struct {
	medications map[string]*entities.Medication
}

func (s *stubCatalogRepo) ListMedications(ctx context.Context) ([]*entities.Medication, error) {
	return nil, nil
}

func (s *stubCatalogRepo) ListSymptoms(ctx context.Context) ([]*entities.Symptom, error) {
	return nil, nil
}

func (s *stubCatalogRepo) GetMedicationByName(ctx context.Context, name string) (*entities.Medication, error) {
	if m, ok := s.medications[name]; ok {
		return m, nil
	}
	return nil, apperrors.NewNotFoundError("medication not found: " + name)
}

func (s *stubCatalogRepo) CreateMedication(ctx context.Context, medication *entities.Medication) error {
	return nil
}

func (s *stubCatalogRepo) CreateSymptom(ctx context.Context, symptom *entities.Symptom) error {
	return nil
}

type stubPrescriptionRepo struct {
	commitErr error
}

func (s *stubPrescriptionRepo) Commit(ctx context.Context, draft *entities.PrescriptionDraft) (*entities.Prescription, error) {
	if s.commitErr != nil {
		return nil, s.commitErr
	}
	return &entities.Prescription{
		ID:         draft.ID,
		TotalPrice: draft.TotalPrice(),
		Items:      draft.Lines,
	}, nil
}

func (s *stubPrescriptionRepo) GetByID(ctx context.Context, id string) (*entities.Prescription, error) {
	return nil, apperrors.NewNotFoundError("prescription not found")
}

func newConfirmHandler(commitErr error) *PrescriptionHandler {
	catalog := &stubCatalogRepo{medications: map[string]*entities.Medication{
		"Paracetamol": {ID: 1, Name: "Paracetamol", UnitPrice: 1000, Stock: 100},
	}}
	service := services.NewFulfillmentService(catalog, &stubPrescriptionRepo{commitErr: commitErr}, nil)
	return NewPrescriptionHandler(service)
}

func postConfirm(t *testing.T, handler *PrescriptionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/prescriptions/confirm", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ConfirmPrescription(rec, req)
	return rec
}

const validConfirmBody = `{
	"main_medicines": [{"name": "Paracetamol", "quantity_per_dose": 2}],
	"doses_per_day": 3,
	"total_days": 2
}`

func TestConfirmPrescription_Success(t *testing.T) {
	rec := postConfirm(t, newConfirmHandler(nil), validConfirmBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_price":12000`)
	assert.Contains(t, rec.Body.String(), `"total_quantity":12`)
}

func TestConfirmPrescription_InvalidBody(t *testing.T) {
	rec := postConfirm(t, newConfirmHandler(nil), "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmPrescription_ValidationFailure(t *testing.T) {
	rec := postConfirm(t, newConfirmHandler(nil), `{
		"main_medicines": [{"name": "Paracetamol", "quantity_per_dose": 0}],
		"doses_per_day": 3,
		"total_days": 2
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmPrescription_UnknownMedication(t *testing.T) {
	rec := postConfirm(t, newConfirmHandler(nil), `{
		"main_medicines": [{"name": "Unobtainium", "quantity_per_dose": 1}],
		"doses_per_day": 2,
		"total_days": 1
	}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfirmPrescription_InsufficientStock(t *testing.T) {
	handler := newConfirmHandler(&entities.InsufficientStockError{
		Name: "Paracetamol", Available: 5, Required: 12,
	})
	rec := postConfirm(t, handler, validConfirmBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":5`)
	assert.Contains(t, rec.Body.String(), `"required":12`)
}
