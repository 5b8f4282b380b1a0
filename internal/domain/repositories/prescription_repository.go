package repositories

import (
	"context"

	"github.com/medvend/backend/internal/domain/entities"
)

// PrescriptionRepository persists confirmed prescriptions.
type PrescriptionRepository interface {
	// Commit runs the fulfillment transaction for a fully-resolved draft:
	// every line's stock row is locked and validated before any mutation,
	// then stock is decremented and the prescription plus its line items are
	// inserted, all inside one database transaction. Any stock shortfall
	// aborts with *entities.InsufficientStockError and leaves every row
	// untouched.
	Commit(ctx context.Context, draft *entities.PrescriptionDraft) (*entities.Prescription, error)

	// GetByID retrieves a committed prescription with its line items
	GetByID(ctx context.Context, id string) (*entities.Prescription, error)
}
