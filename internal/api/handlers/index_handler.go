package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/medvend/backend/internal/application/services"
	"github.com/medvend/backend/internal/domain/entities"
)

const defaultSearchK = 10

// IndexHandler handles embedding index HTTP requests
type IndexHandler struct {
	indexService     *services.IndexService
	retrievalService *services.RetrievalService
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(indexService *services.IndexService, retrievalService *services.RetrievalService) *IndexHandler {
	return &IndexHandler{
		indexService:     indexService,
		retrievalService: retrievalService,
	}
}

// Status handles GET /api/vector-store/status
func (h *IndexHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"indexes": h.indexService.Stats(),
	})
}

// Rebuild handles POST /api/vector-store/rebuild. The rebuild runs in the
// background; searches keep serving the old snapshot until the swap.
func (h *IndexHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := h.indexService.Rebuild(ctx); err != nil {
			log.Error().Err(err).Msg("background index rebuild failed")
		}
	}()

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status": "rebuild started",
	})
}

type medicationSearchRequest struct {
	Query   string                 `json:"query"`
	K       int                    `json:"k"`
	Filters entities.SearchFilters `json:"filters"`
}

// SearchMedications handles POST /api/vector-store/search/medications
func (h *IndexHandler) SearchMedications(w http.ResponseWriter, r *http.Request) {
	var req medicationSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K <= 0 {
		req.K = defaultSearchK
	}

	candidates, err := h.retrievalService.Search(r.Context(), req.Query, req.K, req.Filters)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

type symptomSearchRequest struct {
	Text string `json:"text"`
	K    int    `json:"k"`
}

// SearchSymptoms handles POST /api/vector-store/search/symptoms
func (h *IndexHandler) SearchSymptoms(w http.ResponseWriter, r *http.Request) {
	var req symptomSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.K <= 0 {
		req.K = 5
	}

	matches, err := h.retrievalService.SearchSymptoms(r.Context(), req.Text, req.K)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}
