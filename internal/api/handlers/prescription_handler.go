package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/medvend/backend/internal/application/services"
)

// PrescriptionHandler handles prescription fulfillment HTTP requests
type PrescriptionHandler struct {
	fulfillmentService *services.FulfillmentService
}

// NewPrescriptionHandler creates a new prescription handler
func NewPrescriptionHandler(fulfillmentService *services.FulfillmentService) *PrescriptionHandler {
	return &PrescriptionHandler{
		fulfillmentService: fulfillmentService,
	}
}

// ConfirmPrescription handles POST /api/prescriptions/confirm
func (h *PrescriptionHandler) ConfirmPrescription(w http.ResponseWriter, r *http.Request) {
	var req services.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	receipt, err := h.fulfillmentService.Confirm(r.Context(), req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, receipt)
}

// GetPrescription handles GET /api/prescriptions/{id}
func (h *PrescriptionHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "prescription ID is required")
		return
	}

	prescription, err := h.fulfillmentService.GetPrescription(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, prescription)
}
