package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/medvend/backend/internal/application/services"
	"github.com/medvend/backend/internal/domain/entities"
)

// AnalysisHandler handles symptom analysis HTTP requests
type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// AnalyzeSymptoms handles POST /api/ai/analyze
func (h *AnalysisHandler) AnalyzeSymptoms(w http.ResponseWriter, r *http.Request) {
	var profile entities.PatientProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(profile.Symptoms) == "" {
		respondWithError(w, http.StatusBadRequest, "symptoms are required")
		return
	}

	recommendation, err := h.analysisService.AnalyzeSymptoms(r.Context(), profile)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, recommendation)
}
