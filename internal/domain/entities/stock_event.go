package entities

import (
	"time"

	"github.com/google/uuid"
)

// StockEventType represents the type of stock event
type StockEventType string

const (
	StockEventTypePrescriptionConfirmed StockEventType = "prescription_confirmed"
	StockEventTypeCatalogReseeded       StockEventType = "catalog_reseeded"
)

// StockEvent represents a stock level change in the medication catalog
type StockEvent struct {
	ID             string         `json:"id"`
	EventType      StockEventType `json:"event_type"`
	PrescriptionID string         `json:"prescription_id,omitempty"`
	MedicationIDs  []int64        `json:"medication_ids,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// NewStockEvent creates a new stock event
func NewStockEvent(eventType StockEventType, prescriptionID string, medicationIDs []int64) *StockEvent {
	return &StockEvent{
		ID:             uuid.New().String(),
		EventType:      eventType,
		PrescriptionID: prescriptionID,
		MedicationIDs:  medicationIDs,
		Timestamp:      time.Now(),
	}
}
