package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/repositories"
	apperrors "github.com/medvend/backend/pkg/errors"
)

// MedicationHandler handles catalog HTTP requests
type MedicationHandler struct {
	catalogRepo repositories.CatalogRepository
}

// NewMedicationHandler creates a new medication handler
func NewMedicationHandler(catalogRepo repositories.CatalogRepository) *MedicationHandler {
	return &MedicationHandler{
		catalogRepo: catalogRepo,
	}
}

// ListMedications handles GET /api/medications
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	medications, err := h.catalogRepo.ListMedications(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list medications")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"medications": medications,
		"count":       len(medications),
	})
}

// ListSymptoms handles GET /api/symptoms
func (h *MedicationHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms, err := h.catalogRepo.ListSymptoms(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list symptoms")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symptoms": symptoms,
		"count":    len(symptoms),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithDomainError maps domain and application errors onto HTTP codes.
func respondWithDomainError(w http.ResponseWriter, err error) {
	var notFound *entities.MedicationNotFoundError
	if errors.As(err, &notFound) {
		respondWithError(w, http.StatusNotFound, notFound.Error())
		return
	}

	var stockErr *entities.InsufficientStockError
	if errors.As(err, &stockErr) {
		respondWithJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     stockErr.Error(),
			"name":      stockErr.Name,
			"available": stockErr.Available,
			"required":  stockErr.Required,
		})
		return
	}

	if errors.Is(err, entities.ErrIndexUnavailable) {
		respondWithError(w, http.StatusServiceUnavailable, "search index is not ready")
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeUnavailable:
			respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
