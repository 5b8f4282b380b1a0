package repositories

import (
	"context"

	"github.com/medvend/backend/internal/domain/entities"
)

// CatalogRepository defines read access to the medication/symptom catalog.
// The core treats each call as a point-in-time snapshot.
type CatalogRepository interface {
	// ListMedications retrieves every medication in the catalog
	ListMedications(ctx context.Context) ([]*entities.Medication, error)

	// ListSymptoms retrieves every symptom in the catalog
	ListSymptoms(ctx context.Context) ([]*entities.Symptom, error)

	// GetMedicationByName retrieves a medication by its exact catalog name
	GetMedicationByName(ctx context.Context, name string) (*entities.Medication, error)

	// CreateMedication inserts a medication (seeding/administration)
	CreateMedication(ctx context.Context, medication *entities.Medication) error

	// CreateSymptom inserts a symptom (seeding/administration)
	CreateSymptom(ctx context.Context, symptom *entities.Symptom) error
}
