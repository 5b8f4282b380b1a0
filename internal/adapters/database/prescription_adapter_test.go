package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
)

func newMockAdapter(t *testing.T) (*PrescriptionAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewPrescriptionAdapter(postgres.NewClientFromDB(db)).(*PrescriptionAdapter)
	return adapter, mock
}

func testDraft() *entities.PrescriptionDraft {
	return &entities.PrescriptionDraft{
		ID:          "rx-1",
		DosesPerDay: 3,
		TotalDays:   2,
		Lines: []entities.PrescriptionLineItem{
			{MedicationID: 1, Name: "Paracetamol", TotalQuantity: 12, UnitPrice: 1000, LinePrice: 12000},
		},
	}
}

func TestPrescriptionAdapter_Commit(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(100))
	mock.ExpectExec(`UPDATE "medications" SET "stock"=stock`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescriptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescription_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prescription, err := adapter.Commit(context.Background(), testDraft())
	require.NoError(t, err)

	assert.Equal(t, "rx-1", prescription.ID)
	assert.Equal(t, int64(12000), prescription.TotalPrice)
	require.Len(t, prescription.Items, 1)
	assert.Equal(t, 12, prescription.Items[0].TotalQuantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionAdapter_Commit_InsufficientStockRollsBack(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	draft := testDraft()
	draft.Lines = append(draft.Lines, entities.PrescriptionLineItem{
		MedicationID: 2, Name: "Vitamin C", TotalQuantity: 50, UnitPrice: 500, LinePrice: 25000,
	})

	// First line passes validation, second is short on stock. No update or
	// insert may run; the transaction must roll back instead.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(100))
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(10))
	mock.ExpectRollback()

	_, err := adapter.Commit(context.Background(), draft)
	require.Error(t, err)

	var stockErr *entities.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Vitamin C", stockErr.Name)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 50, stockErr.Required)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionAdapter_Commit_DuplicateLinesValidateAggregate(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	// The same medication on two lines needs the summed quantity. Each line
	// fits the available stock on its own, so per-line validation would let
	// the decrements drive the row negative; the combined requirement must
	// fail against a single locked read instead.
	draft := testDraft()
	draft.Lines = []entities.PrescriptionLineItem{
		{MedicationID: 1, Name: "Paracetamol", TotalQuantity: 6, UnitPrice: 1000, LinePrice: 6000},
		{MedicationID: 1, Name: "Paracetamol", TotalQuantity: 6, UnitPrice: 1000, LinePrice: 6000},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(10))
	mock.ExpectRollback()

	_, err := adapter.Commit(context.Background(), draft)
	require.Error(t, err)

	var stockErr *entities.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Paracetamol", stockErr.Name)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 12, stockErr.Required)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionAdapter_Commit_DuplicateLinesDecrementOnce(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	draft := testDraft()
	draft.Lines = []entities.PrescriptionLineItem{
		{MedicationID: 1, Name: "Paracetamol", TotalQuantity: 6, UnitPrice: 1000, LinePrice: 6000},
		{MedicationID: 1, Name: "Paracetamol", TotalQuantity: 6, UnitPrice: 1000, LinePrice: 6000},
	}

	// One lock and one decrement for the medication, both items persisted.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(20))
	mock.ExpectExec(`UPDATE "medications" SET "stock"=stock`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescriptions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescription_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescription_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	prescription, err := adapter.Commit(context.Background(), draft)
	require.NoError(t, err)
	require.Len(t, prescription.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionAdapter_Commit_UnknownMedicationRollsBack(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))
	mock.ExpectRollback()

	_, err := adapter.Commit(context.Background(), testDraft())
	require.Error(t, err)

	var notFound *entities.MedicationNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Paracetamol", notFound.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrescriptionAdapter_Commit_InsertFailureRollsBack(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "stock" FROM "medications" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(100))
	mock.ExpectExec(`UPDATE "medications" SET "stock"=stock`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "prescriptions"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := adapter.Commit(context.Background(), testDraft())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
