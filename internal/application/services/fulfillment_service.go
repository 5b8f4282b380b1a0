package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/internal/domain/repositories"
	apperrors "github.com/medvend/backend/pkg/errors"
)

// MainItem is a confirm request entry dosed per intake.
type MainItem struct {
	Name            string `json:"name"`
	QuantityPerDose int    `json:"quantity_per_dose"`
}

// SupportingItem is a confirm request entry with either a fixed total or a
// per-day quantity. With neither set the quantity defaults to 1.
type SupportingItem struct {
	Name           string `json:"name"`
	Quantity       *int   `json:"quantity,omitempty"`
	QuantityPerDay *int   `json:"quantity_per_day,omitempty"`
}

// ConfirmRequest is a proposed prescription to price, validate and commit.
type ConfirmRequest struct {
	Profile         entities.PatientProfile `json:"patient_profile"`
	MainItems       []MainItem              `json:"main_medicines"`
	SupportingItems []SupportingItem        `json:"supporting_medicines"`
	DosesPerDay     int                     `json:"doses_per_day"`
	TotalDays       int                     `json:"total_days"`
}

// FulfillmentService turns a confirm request into a committed prescription:
// resolve every name against the catalog, compute quantities and prices, then
// hand the draft to the repository's all-or-nothing transaction.
type FulfillmentService struct {
	catalogRepo      repositories.CatalogRepository
	prescriptionRepo repositories.PrescriptionRepository
	eventBus         providers.EventBus
}

func NewFulfillmentService(
	catalogRepo repositories.CatalogRepository,
	prescriptionRepo repositories.PrescriptionRepository,
	eventBus providers.EventBus,
) *FulfillmentService {
	return &FulfillmentService{
		catalogRepo:      catalogRepo,
		prescriptionRepo: prescriptionRepo,
		eventBus:         eventBus,
	}
}

// Confirm validates, prices and commits the request. Resolution or stock
// failures abort before any mutation; the committed receipt preserves the
// request's item order, main items first.
func (s *FulfillmentService) Confirm(ctx context.Context, req ConfirmRequest) (*entities.PrescriptionReceipt, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	lines := make([]entities.PrescriptionLineItem, 0, len(req.MainItems)+len(req.SupportingItems))

	for _, item := range req.MainItems {
		medication, err := s.resolveMedication(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		quantity := item.QuantityPerDose * req.DosesPerDay * req.TotalDays
		lines = append(lines, newLineItem(medication, quantity))
	}

	for _, item := range req.SupportingItems {
		medication, err := s.resolveMedication(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, newLineItem(medication, supportingQuantity(item)))
	}

	draft := &entities.PrescriptionDraft{
		ID:          uuid.New().String(),
		Profile:     req.Profile,
		DosesPerDay: req.DosesPerDay,
		TotalDays:   req.TotalDays,
		Lines:       lines,
	}

	prescription, err := s.prescriptionRepo.Commit(ctx, draft)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("prescription_id", prescription.ID).
		Int64("total_price", prescription.TotalPrice).
		Int("items", len(prescription.Items)).
		Msg("prescription committed")

	s.publishStockEvent(ctx, prescription)

	receipt := &entities.PrescriptionReceipt{
		PrescriptionID: prescription.ID,
		TotalPrice:     prescription.TotalPrice,
		Items:          make([]entities.ReceiptItem, len(prescription.Items)),
		CreatedAt:      prescription.CreatedAt,
	}
	for i, item := range prescription.Items {
		receipt.Items[i] = entities.ReceiptItem{
			Name:          item.Name,
			TotalQuantity: item.TotalQuantity,
			LinePrice:     item.LinePrice,
		}
	}
	return receipt, nil
}

func (s *FulfillmentService) validate(req ConfirmRequest) error {
	if len(req.MainItems) == 0 && len(req.SupportingItems) == 0 {
		return apperrors.NewValidationError("prescription has no items")
	}
	if len(req.MainItems) > 0 {
		if req.DosesPerDay <= 0 {
			return apperrors.NewValidationError("doses_per_day must be positive")
		}
		if req.TotalDays <= 0 {
			return apperrors.NewValidationError("total_days must be positive")
		}
	}
	for _, item := range req.MainItems {
		if strings.TrimSpace(item.Name) == "" {
			return apperrors.NewValidationError("main medicine missing name")
		}
		if item.QuantityPerDose <= 0 {
			return apperrors.NewValidationError("quantity_per_dose must be positive for " + item.Name)
		}
	}
	for _, item := range req.SupportingItems {
		if strings.TrimSpace(item.Name) == "" {
			return apperrors.NewValidationError("supporting medicine missing name")
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			return apperrors.NewValidationError("quantity must be positive for " + item.Name)
		}
		if item.QuantityPerDay != nil && *item.QuantityPerDay <= 0 {
			return apperrors.NewValidationError("quantity_per_day must be positive for " + item.Name)
		}
	}
	return nil
}

// resolveMedication matches a proposed name against the catalog: exact match
// first, then with any parenthesized suffix trimmed. The reasoning step tends
// to annotate names with dosage, e.g. "Paracetamol (500mg)".
func (s *FulfillmentService) resolveMedication(ctx context.Context, name string) (*entities.Medication, error) {
	trimmed := strings.TrimSpace(name)

	medication, err := s.catalogRepo.GetMedicationByName(ctx, trimmed)
	if err == nil {
		return medication, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	if idx := strings.Index(trimmed, "("); idx > 0 {
		base := strings.TrimSpace(trimmed[:idx])
		medication, err = s.catalogRepo.GetMedicationByName(ctx, base)
		if err == nil {
			return medication, nil
		}
		if !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	return nil, &entities.MedicationNotFoundError{Name: name}
}

func supportingQuantity(item SupportingItem) int {
	switch {
	case item.Quantity != nil:
		return *item.Quantity
	case item.QuantityPerDay != nil:
		return *item.QuantityPerDay
	default:
		return 1
	}
}

func newLineItem(m *entities.Medication, quantity int) entities.PrescriptionLineItem {
	return entities.PrescriptionLineItem{
		MedicationID:  m.ID,
		Name:          m.Name,
		TotalQuantity: quantity,
		UnitPrice:     m.UnitPrice,
		LinePrice:     int64(quantity) * m.UnitPrice,
	}
}

// publishStockEvent notifies subscribers that stock moved. Delivery is best
// effort; the prescription is already committed.
func (s *FulfillmentService) publishStockEvent(ctx context.Context, prescription *entities.Prescription) {
	if s.eventBus == nil {
		return
	}

	medicationIDs := make([]int64, len(prescription.Items))
	for i, item := range prescription.Items {
		medicationIDs[i] = item.MedicationID
	}

	event := entities.NewStockEvent(entities.StockEventTypePrescriptionConfirmed, prescription.ID, medicationIDs)
	if err := s.eventBus.Publish(ctx, providers.EventChannelStockUpdates, event); err != nil {
		log.Warn().Err(err).Str("prescription_id", prescription.ID).Msg("failed to publish stock event")
	}
}

// GetPrescription returns a committed prescription by id.
func (s *FulfillmentService) GetPrescription(ctx context.Context, id string) (*entities.Prescription, error) {
	return s.prescriptionRepo.GetByID(ctx, id)
}
