package entities

import (
	"errors"
	"fmt"
)

// ErrIndexUnavailable is returned when a query reaches an embedding index
// before a successful build or load.
var ErrIndexUnavailable = errors.New("embedding index unavailable")

// MedicationNotFoundError means name resolution exhausted the parenthetical
// fallback without finding a catalog match.
type MedicationNotFoundError struct {
	Name string
}

func (e *MedicationNotFoundError) Error() string {
	return fmt.Sprintf("medication not found: %s", e.Name)
}

// InsufficientStockError aborts a fulfillment transaction when any line's
// required quantity exceeds the available stock. No stock is mutated.
type InsufficientStockError struct {
	Name      string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, required %d", e.Name, e.Available, e.Required)
}
