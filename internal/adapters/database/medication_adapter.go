package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/repositories"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/medvend/backend/pkg/errors"
)

var medicationColumns = []interface{}{
	"id", "name", "active_ingredient", "form", "unit_type", "unit_price",
	"stock", "side_effects", "max_per_day", "is_supporting",
	"treatment_class", "contraindications", "allergy_tags",
}

// MedicationAdapter implements CatalogRepository
type MedicationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMedicationAdapter creates a new medication adapter
func NewMedicationAdapter(client *postgres.Client) repositories.CatalogRepository {
	return &MedicationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListMedications retrieves every medication in the catalog
func (a *MedicationAdapter) ListMedications(ctx context.Context) ([]*entities.Medication, error) {
	query, args, err := a.db.Select(medicationColumns...).
		From("medications").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list medications", err)
	}
	defer rows.Close()

	var medications []*entities.Medication
	for rows.Next() {
		medication, err := scanMedication(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan medication", err)
		}
		medications = append(medications, medication)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate medications", err)
	}

	return medications, nil
}

// ListSymptoms retrieves every symptom in the catalog
func (a *MedicationAdapter) ListSymptoms(ctx context.Context) ([]*entities.Symptom, error) {
	query, args, err := a.db.Select("id", "name").
		From("symptoms").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list symptoms", err)
	}
	defer rows.Close()

	var symptoms []*entities.Symptom
	for rows.Next() {
		symptom := &entities.Symptom{}
		if err := rows.Scan(&symptom.ID, &symptom.Name); err != nil {
			return nil, apperrors.NewInternalError("failed to scan symptom", err)
		}
		symptoms = append(symptoms, symptom)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate symptoms", err)
	}

	return symptoms, nil
}

// GetMedicationByName retrieves a medication by its exact catalog name
func (a *MedicationAdapter) GetMedicationByName(ctx context.Context, name string) (*entities.Medication, error) {
	query, args, err := a.db.Select(medicationColumns...).
		From("medications").
		Where(goqu.Ex{"name": name}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	medication, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("medication not found: " + name)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get medication by name", err)
	}

	return medication, nil
}

// CreateMedication inserts a medication
func (a *MedicationAdapter) CreateMedication(ctx context.Context, medication *entities.Medication) error {
	record := goqu.Record{
		"name":              medication.Name,
		"active_ingredient": medication.ActiveIngredient,
		"form":              medication.Form,
		"unit_type":         medication.UnitType,
		"unit_price":        medication.UnitPrice,
		"stock":             medication.Stock,
		"side_effects":      sql.NullString{String: medication.SideEffects, Valid: medication.SideEffects != ""},
		"max_per_day":       sql.NullInt64{Int64: int64(medication.MaxPerDay), Valid: medication.MaxPerDay > 0},
		"is_supporting":     medication.IsSupporting,
		"treatment_class":   sql.NullString{String: medication.TreatmentClass, Valid: medication.TreatmentClass != ""},
		"contraindications": sql.NullString{String: medication.Contraindications, Valid: medication.Contraindications != ""},
		"allergy_tags":      pq.Array(medication.AllergyTags),
	}
	if medication.ID != 0 {
		record["id"] = medication.ID
	}

	query, args, err := a.db.Insert("medications").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create medication", err)
	}
	return nil
}

// CreateSymptom inserts a symptom
func (a *MedicationAdapter) CreateSymptom(ctx context.Context, symptom *entities.Symptom) error {
	record := goqu.Record{"name": symptom.Name}
	if symptom.ID != 0 {
		record["id"] = symptom.ID
	}

	query, args, err := a.db.Insert("symptoms").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create symptom", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedication(row rowScanner) (*entities.Medication, error) {
	medication := &entities.Medication{}
	var sideEffects, treatmentClass, contraindications sql.NullString
	var maxPerDay sql.NullInt64

	err := row.Scan(
		&medication.ID,
		&medication.Name,
		&medication.ActiveIngredient,
		&medication.Form,
		&medication.UnitType,
		&medication.UnitPrice,
		&medication.Stock,
		&sideEffects,
		&maxPerDay,
		&medication.IsSupporting,
		&treatmentClass,
		&contraindications,
		pq.Array(&medication.AllergyTags),
	)
	if err != nil {
		return nil, err
	}

	medication.SideEffects = sideEffects.String
	medication.MaxPerDay = int(maxPerDay.Int64)
	medication.TreatmentClass = treatmentClass.String
	medication.Contraindications = contraindications.String

	return medication, nil
}
