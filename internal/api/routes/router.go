package routes

import (
	"net/http"

	"github.com/medvend/backend/internal/api/handlers"
	"github.com/medvend/backend/internal/api/middleware"
	"github.com/medvend/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	medicationHandler   *handlers.MedicationHandler
	analysisHandler     *handlers.AnalysisHandler
	prescriptionHandler *handlers.PrescriptionHandler
	indexHandler        *handlers.IndexHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	medicationHandler *handlers.MedicationHandler,
	analysisHandler *handlers.AnalysisHandler,
	prescriptionHandler *handlers.PrescriptionHandler,
	indexHandler *handlers.IndexHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		medicationHandler:   medicationHandler,
		analysisHandler:     analysisHandler,
		prescriptionHandler: prescriptionHandler,
		indexHandler:        indexHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/medications", r.medicationHandler.ListMedications)
	r.mux.HandleFunc("GET /api/symptoms", r.medicationHandler.ListSymptoms)

	// Analysis endpoint
	r.mux.HandleFunc("POST /api/ai/analyze", r.analysisHandler.AnalyzeSymptoms)

	// Prescription endpoints
	r.mux.HandleFunc("POST /api/prescriptions/confirm", r.prescriptionHandler.ConfirmPrescription)
	r.mux.HandleFunc("GET /api/prescriptions/{id}", r.prescriptionHandler.GetPrescription)

	// Embedding index endpoints
	r.mux.HandleFunc("GET /api/vector-store/status", r.indexHandler.Status)
	r.mux.HandleFunc("POST /api/vector-store/rebuild", r.indexHandler.Rebuild)
	r.mux.HandleFunc("POST /api/vector-store/search/medications", r.indexHandler.SearchMedications)
	r.mux.HandleFunc("POST /api/vector-store/search/symptoms", r.indexHandler.SearchSymptoms)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
