package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/medvend/backend/internal/domain/entities"
	apperrors "github.com/medvend/backend/pkg/errors"
)

func intPtr(v int) *int { return &v }

func paracetamol() *entities.Medication {
	return &entities.Medication{
		ID:        1,
		Name:      "Paracetamol",
		UnitPrice: 1000,
		Stock:     100,
	}
}

// fakePrescriptionRepo echoes a committed draft back and remembers it,
// standing in for a successful database transaction.
type fakePrescriptionRepo struct {
	committed *entities.PrescriptionDraft
}

func (f *fakePrescriptionRepo) Commit(ctx context.Context, draft *entities.PrescriptionDraft) (*entities.Prescription, error) {
	f.committed = draft
	return &entities.Prescription{
		ID:          draft.ID,
		Profile:     draft.Profile,
		DosesPerDay: draft.DosesPerDay,
		TotalDays:   draft.TotalDays,
		TotalPrice:  draft.TotalPrice(),
		Items:       draft.Lines,
	}, nil
}

func (f *fakePrescriptionRepo) GetByID(ctx context.Context, id string) (*entities.Prescription, error) {
	return nil, apperrors.NewNotFoundError("prescription not found")
}

func TestFulfillmentService_Confirm_Pricing(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := &fakePrescriptionRepo{}
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)

	service := NewFulfillmentService(catalog, repo, nil)
	receipt, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:   []MainItem{{Name: "Paracetamol", QuantityPerDose: 2}},
		DosesPerDay: 3,
		TotalDays:   2,
	})
	require.NoError(t, err)

	require.Len(t, receipt.Items, 1)
	assert.Equal(t, 12, receipt.Items[0].TotalQuantity)
	assert.Equal(t, int64(12000), receipt.Items[0].LinePrice)
	assert.Equal(t, int64(12000), receipt.TotalPrice)
	assert.NotEmpty(t, receipt.PrescriptionID)
}

func TestFulfillmentService_Confirm_ParentheticalNameFallback(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := &fakePrescriptionRepo{}
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol (500mg)").
		Return(nil, apperrors.NewNotFoundError("medication not found: Paracetamol (500mg)"))
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)

	service := NewFulfillmentService(catalog, repo, nil)
	receipt, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:   []MainItem{{Name: "Paracetamol (500mg)", QuantityPerDose: 1}},
		DosesPerDay: 2,
		TotalDays:   1,
	})
	require.NoError(t, err)

	// Resolved to the catalog row, with the catalog's own name on the line
	assert.Equal(t, "Paracetamol", receipt.Items[0].Name)
	assert.Equal(t, 2, receipt.Items[0].TotalQuantity)
	catalog.AssertCalled(t, "GetMedicationByName", mock.Anything, "Paracetamol")
}

func TestFulfillmentService_Confirm_UnknownName(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := new(MockPrescriptionRepo)
	catalog.On("GetMedicationByName", mock.Anything, mock.AnythingOfType("string")).
		Return(nil, apperrors.NewNotFoundError("medication not found"))

	service := NewFulfillmentService(catalog, repo, nil)
	_, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:   []MainItem{{Name: "Unobtainium (10mg)", QuantityPerDose: 1}},
		DosesPerDay: 1,
		TotalDays:   1,
	})

	var notFound *entities.MedicationNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Unobtainium (10mg)", notFound.Name)
	repo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestFulfillmentService_Confirm_SupportingQuantities(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := &fakePrescriptionRepo{}
	catalog.On("GetMedicationByName", mock.Anything, "Oresol").
		Return(&entities.Medication{ID: 2, Name: "Oresol", UnitPrice: 500, Stock: 50}, nil)
	catalog.On("GetMedicationByName", mock.Anything, "Thermometer").
		Return(&entities.Medication{ID: 3, Name: "Thermometer", UnitPrice: 15000, Stock: 5}, nil)
	catalog.On("GetMedicationByName", mock.Anything, "Vitamin C").
		Return(&entities.Medication{ID: 4, Name: "Vitamin C", UnitPrice: 200, Stock: 80}, nil)

	service := NewFulfillmentService(catalog, repo, nil)
	receipt, err := service.Confirm(context.Background(), ConfirmRequest{
		SupportingItems: []SupportingItem{
			{Name: "Oresol", QuantityPerDay: intPtr(4)},
			{Name: "Thermometer", Quantity: intPtr(1)},
			{Name: "Vitamin C"},
		},
	})
	require.NoError(t, err)

	require.Len(t, receipt.Items, 3)
	assert.Equal(t, 4, receipt.Items[0].TotalQuantity) // per-day amount
	assert.Equal(t, 1, receipt.Items[1].TotalQuantity) // fixed total
	assert.Equal(t, 1, receipt.Items[2].TotalQuantity) // default
	assert.Equal(t, int64(4*500+15000+200), receipt.TotalPrice)
}

func TestFulfillmentService_Confirm_Validation(t *testing.T) {
	service := NewFulfillmentService(new(MockCatalogRepo), new(MockPrescriptionRepo), nil)

	cases := []struct {
		name string
		req  ConfirmRequest
	}{
		{"no items", ConfirmRequest{DosesPerDay: 2, TotalDays: 2}},
		{"zero doses per day", ConfirmRequest{
			MainItems: []MainItem{{Name: "Paracetamol", QuantityPerDose: 1}},
			TotalDays: 2,
		}},
		{"zero total days", ConfirmRequest{
			MainItems:   []MainItem{{Name: "Paracetamol", QuantityPerDose: 1}},
			DosesPerDay: 2,
		}},
		{"non-positive quantity per dose", ConfirmRequest{
			MainItems:   []MainItem{{Name: "Paracetamol", QuantityPerDose: 0}},
			DosesPerDay: 2,
			TotalDays:   2,
		}},
		{"blank main name", ConfirmRequest{
			MainItems:   []MainItem{{Name: "  ", QuantityPerDose: 1}},
			DosesPerDay: 2,
			TotalDays:   2,
		}},
		{"non-positive supporting total", ConfirmRequest{
			SupportingItems: []SupportingItem{{Name: "Oresol", Quantity: intPtr(0)}},
		}},
		{"non-positive supporting per day", ConfirmRequest{
			SupportingItems: []SupportingItem{{Name: "Oresol", QuantityPerDay: intPtr(-1)}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Confirm(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.GetType(err))
		})
	}
}

func TestFulfillmentService_Confirm_DuplicateMedicationAcrossItems(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := &fakePrescriptionRepo{}
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)

	// Reasoning output may name the same medication as both a main and a
	// supporting item. Both lines must reach the commit untouched so the
	// transaction can validate their combined quantity against stock.
	service := NewFulfillmentService(catalog, repo, nil)
	receipt, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:       []MainItem{{Name: "Paracetamol", QuantityPerDose: 1}},
		SupportingItems: []SupportingItem{{Name: "Paracetamol", Quantity: intPtr(6)}},
		DosesPerDay:     3,
		TotalDays:       2,
	})
	require.NoError(t, err)

	require.NotNil(t, repo.committed)
	require.Len(t, repo.committed.Lines, 2)
	assert.Equal(t, int64(1), repo.committed.Lines[0].MedicationID)
	assert.Equal(t, int64(1), repo.committed.Lines[1].MedicationID)
	assert.Equal(t, 6, repo.committed.Lines[0].TotalQuantity)
	assert.Equal(t, 6, repo.committed.Lines[1].TotalQuantity)
	assert.Equal(t, int64(12000), receipt.TotalPrice)
}

func TestFulfillmentService_Confirm_DuplicateMedicationStockShortage(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := new(MockPrescriptionRepo)
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)
	repo.On("Commit", mock.Anything, mock.AnythingOfType("*entities.PrescriptionDraft")).
		Return(nil, &entities.InsufficientStockError{Name: "Paracetamol", Available: 10, Required: 12})

	service := NewFulfillmentService(catalog, repo, nil)
	_, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:       []MainItem{{Name: "Paracetamol", QuantityPerDose: 1}},
		SupportingItems: []SupportingItem{{Name: "Paracetamol", Quantity: intPtr(6)}},
		DosesPerDay:     3,
		TotalDays:       2,
	})

	// The shortage reports the combined requirement, not a single line's
	var stockErr *entities.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 12, stockErr.Required)
}

func TestFulfillmentService_Confirm_StockErrorPassesThrough(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := new(MockPrescriptionRepo)
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)
	repo.On("Commit", mock.Anything, mock.AnythingOfType("*entities.PrescriptionDraft")).
		Return(nil, &entities.InsufficientStockError{Name: "Paracetamol", Available: 5, Required: 12})

	service := NewFulfillmentService(catalog, repo, nil)
	_, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:   []MainItem{{Name: "Paracetamol", QuantityPerDose: 2}},
		DosesPerDay: 3,
		TotalDays:   2,
	})

	var stockErr *entities.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 12, stockErr.Required)
}

func TestFulfillmentService_Confirm_PublishesStockEvent(t *testing.T) {
	catalog := new(MockCatalogRepo)
	repo := &fakePrescriptionRepo{}
	bus := newFakeEventBus()
	catalog.On("GetMedicationByName", mock.Anything, "Paracetamol").Return(paracetamol(), nil)

	service := NewFulfillmentService(catalog, repo, bus)
	receipt, err := service.Confirm(context.Background(), ConfirmRequest{
		MainItems:   []MainItem{{Name: "Paracetamol", QuantityPerDose: 2}},
		DosesPerDay: 3,
		TotalDays:   2,
	})
	require.NoError(t, err)

	require.Len(t, bus.published, 1)
	event := bus.published[0]
	assert.Equal(t, entities.StockEventTypePrescriptionConfirmed, event.EventType)
	assert.Equal(t, receipt.PrescriptionID, event.PrescriptionID)
	assert.Equal(t, []int64{paracetamol().ID}, event.MedicationIDs)
}
