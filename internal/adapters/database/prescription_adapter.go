package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/repositories"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/medvend/backend/pkg/errors"
)

// PrescriptionAdapter implements PrescriptionRepository
type PrescriptionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPrescriptionAdapter creates a new prescription adapter
func NewPrescriptionAdapter(client *postgres.Client) repositories.PrescriptionRepository {
	return &PrescriptionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// stockRequirement is the combined quantity a prescription needs from one
// medication, summed across every line that references it.
type stockRequirement struct {
	medicationID int64
	name         string
	required     int
}

// Commit runs the fulfillment transaction: lock and validate every stock row,
// then decrement stock and insert the prescription with its line items. Row
// locks taken during validation serialize concurrent confirms touching the
// same medication, so two requests can never both validate against stale
// stock. Any failure rolls the whole transaction back.
func (a *PrescriptionAdapter) Commit(ctx context.Context, draft *entities.PrescriptionDraft) (*entities.Prescription, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Aggregate lines per medication first: a medication named on several
	// lines must validate and decrement as one total, or the line-by-line
	// checks would pass individually while jointly overdrawing the row.
	totals := make(map[int64]*stockRequirement, len(draft.Lines))
	for _, line := range draft.Lines {
		if req, ok := totals[line.MedicationID]; ok {
			req.required += line.TotalQuantity
			continue
		}
		totals[line.MedicationID] = &stockRequirement{
			medicationID: line.MedicationID,
			name:         line.Name,
			required:     line.TotalQuantity,
		}
	}
	requirements := make([]*stockRequirement, 0, len(totals))
	for _, req := range totals {
		requirements = append(requirements, req)
	}
	sort.Slice(requirements, func(i, j int) bool {
		return requirements[i].medicationID < requirements[j].medicationID
	})

	// Phase 1: lock stock rows in id order and validate every requirement
	// before touching anything. Ordered locking avoids deadlocks between
	// concurrent confirms with overlapping medications.
	for _, req := range requirements {
		query, args, err := a.db.Select("stock").
			From("medications").
			Where(goqu.Ex{"id": req.medicationID}).
			ForUpdate(exp.Wait).
			ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build lock query", err)
		}

		var stock int
		err = tx.QueryRowContext(ctx, query, args...).Scan(&stock)
		if err == sql.ErrNoRows {
			return nil, &entities.MedicationNotFoundError{Name: req.name}
		}
		if err != nil {
			return nil, apperrors.NewInternalError("failed to lock medication stock", err)
		}

		if stock < req.required {
			return nil, &entities.InsufficientStockError{
				Name:      req.name,
				Available: stock,
				Required:  req.required,
			}
		}
	}

	// Phase 2: every requirement passed, mutate stock
	for _, req := range requirements {
		query, args, err := a.db.Update("medications").
			Set(goqu.Record{"stock": goqu.L("stock - ?", req.required)}).
			Where(goqu.Ex{"id": req.medicationID}).
			ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build stock update", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, apperrors.NewInternalError("failed to decrement stock", err)
		}
	}

	createdAt := time.Now().UTC()

	profileJSON, err := json.Marshal(draft.Profile)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode patient profile", err)
	}

	query, args, err := a.db.Insert("prescriptions").Rows(goqu.Record{
		"id":              draft.ID,
		"patient_profile": profileJSON,
		"doses_per_day":   draft.DosesPerDay,
		"total_days":      draft.TotalDays,
		"total_price":     draft.TotalPrice(),
		"created_at":      createdAt,
	}).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build prescription insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to insert prescription", err)
	}

	items := make([]entities.PrescriptionLineItem, len(draft.Lines))
	for position, line := range draft.Lines {
		line.Position = position
		items[position] = line

		query, args, err := a.db.Insert("prescription_items").Rows(goqu.Record{
			"prescription_id": draft.ID,
			"medication_id":   line.MedicationID,
			"name":            line.Name,
			"total_quantity":  line.TotalQuantity,
			"unit_price":      line.UnitPrice,
			"line_price":      line.LinePrice,
			"position":        position,
		}).ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build line item insert", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, apperrors.NewInternalError("failed to insert line item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit prescription", err)
	}
	committed = true

	return &entities.Prescription{
		ID:          draft.ID,
		Profile:     draft.Profile,
		DosesPerDay: draft.DosesPerDay,
		TotalDays:   draft.TotalDays,
		TotalPrice:  draft.TotalPrice(),
		CreatedAt:   createdAt,
		Items:       items,
	}, nil
}

// GetByID retrieves a committed prescription with its line items
func (a *PrescriptionAdapter) GetByID(ctx context.Context, id string) (*entities.Prescription, error) {
	query, args, err := a.db.Select("id", "patient_profile", "doses_per_day", "total_days", "total_price", "created_at").
		From("prescriptions").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	prescription := &entities.Prescription{}
	var profileJSON []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&prescription.ID,
		&profileJSON,
		&prescription.DosesPerDay,
		&prescription.TotalDays,
		&prescription.TotalPrice,
		&prescription.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("prescription not found: " + id)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get prescription", err)
	}

	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &prescription.Profile); err != nil {
			return nil, apperrors.NewInternalError("failed to decode patient profile", err)
		}
	}

	query, args, err = a.db.Select("medication_id", "name", "total_quantity", "unit_price", "line_price", "position").
		From("prescription_items").
		Where(goqu.Ex{"prescription_id": id}).
		Order(goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list line items", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := entities.PrescriptionLineItem{}
		if err := rows.Scan(&item.MedicationID, &item.Name, &item.TotalQuantity, &item.UnitPrice, &item.LinePrice, &item.Position); err != nil {
			return nil, apperrors.NewInternalError("failed to scan line item", err)
		}
		prescription.Items = append(prescription.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate line items", err)
	}

	return prescription, nil
}
