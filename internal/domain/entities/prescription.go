package entities

import (
	"time"
)

// PrescriptionLineItem is one resolved medication within a prescription.
// LinePrice is always TotalQuantity × UnitPrice in integer currency.
type PrescriptionLineItem struct {
	MedicationID  int64  `json:"medication_id" db:"medication_id"`
	Name          string `json:"name" db:"name"`
	TotalQuantity int    `json:"total_quantity" db:"total_quantity"`
	UnitPrice     int64  `json:"unit_price" db:"unit_price"`
	LinePrice     int64  `json:"line_price" db:"line_price"`
	Position      int    `json:"position" db:"position"`
}

// PrescriptionDraft is the transient aggregate assembled during a single
// confirm request. It is never persisted; it either becomes a Prescription
// when the commit succeeds or is discarded with no side effects.
type PrescriptionDraft struct {
	ID          string
	Profile     PatientProfile
	DosesPerDay int
	TotalDays   int
	Lines       []PrescriptionLineItem
}

// TotalPrice sums the line prices of the draft.
func (d *PrescriptionDraft) TotalPrice() int64 {
	var total int64
	for _, line := range d.Lines {
		total += line.LinePrice
	}
	return total
}

// Prescription is a committed, persisted prescription.
type Prescription struct {
	ID          string                 `json:"id" db:"id"`
	Profile     PatientProfile         `json:"patient_profile" db:"patient_profile"`
	DosesPerDay int                    `json:"doses_per_day" db:"doses_per_day"`
	TotalDays   int                    `json:"total_days" db:"total_days"`
	TotalPrice  int64                  `json:"total_price" db:"total_price"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	Items       []PrescriptionLineItem `json:"items"`
}

// ReceiptItem is one line of the confirm response breakdown.
type ReceiptItem struct {
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
	LinePrice     int64  `json:"line_price"`
}

// PrescriptionReceipt is the caller-facing result of a successful confirm.
type PrescriptionReceipt struct {
	PrescriptionID string        `json:"prescription_id"`
	TotalPrice     int64         `json:"total_price"`
	Items          []ReceiptItem `json:"items"`
	CreatedAt      time.Time     `json:"created_at"`
}
