package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/medvend/backend/internal/domain/entities"
)

// Mocks

type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ListMedications(ctx context.Context) ([]*entities.Medication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Medication), args.Error(1)
}

func (m *MockCatalogRepo) ListSymptoms(ctx context.Context) ([]*entities.Symptom, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Symptom), args.Error(1)
}

func (m *MockCatalogRepo) GetMedicationByName(ctx context.Context, name string) (*entities.Medication, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Medication), args.Error(1)
}

func (m *MockCatalogRepo) CreateMedication(ctx context.Context, medication *entities.Medication) error {
	return nil
}

func (m *MockCatalogRepo) CreateSymptom(ctx context.Context, symptom *entities.Symptom) error {
	return nil
}

type MockPrescriptionRepo struct {
	mock.Mock
}

func (m *MockPrescriptionRepo) Commit(ctx context.Context, draft *entities.PrescriptionDraft) (*entities.Prescription, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepo) GetByID(ctx context.Context, id string) (*entities.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Prescription), args.Error(1)
}

type MockReasoningProvider struct {
	mock.Mock
}

func (m *MockReasoningProvider) Analyze(ctx context.Context, profile entities.PatientProfile, medContext string) (*entities.Recommendation, error) {
	args := m.Called(ctx, profile, medContext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Recommendation), args.Error(1)
}
