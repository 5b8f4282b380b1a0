package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medvend/backend/internal/adapters/cache"
	"github.com/medvend/backend/internal/adapters/database"
	"github.com/medvend/backend/internal/adapters/embedding"
	"github.com/medvend/backend/internal/adapters/events"
	"github.com/medvend/backend/internal/adapters/search"
	"github.com/medvend/backend/internal/api/handlers"
	"github.com/medvend/backend/internal/api/middleware"
	"github.com/medvend/backend/internal/api/routes"
	"github.com/medvend/backend/internal/application/services"
	domainproviders "github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/internal/domain/repositories"
	"github.com/medvend/backend/internal/infrastructure/clients/openai"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
	"github.com/medvend/backend/internal/infrastructure/clients/redis"
	"github.com/medvend/backend/internal/infrastructure/clients/typesense"
	"github.com/medvend/backend/internal/infrastructure/observability"
	"github.com/medvend/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider domainproviders.CacheProvider
	var eventBus domainproviders.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
	}

	// Initialize adapters
	catalogAdapter := database.NewMedicationAdapter(pgClient)
	prescriptionAdapter := database.NewPrescriptionAdapter(pgClient)

	// Select the embedder
	var embedder domainproviders.Embedder
	var openaiClient *openai.Client
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err = openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		}
	}
	if cfg.Vector.Embedder == "openai" && openaiClient != nil {
		embedder = openaiClient
		log.Println("Using OpenAI embedder")
	} else {
		hashingEmbedder, err := embedding.NewHashingEmbedder(cfg.Vector.Dimension)
		if err != nil {
			log.Fatalf("Failed to initialize embedder: %v", err)
		}
		embedder = hashingEmbedder
		log.Println("Using hashing embedder")
	}

	// Select the index backend
	var medicationIndex, symptomIndex repositories.VectorIndex
	if cfg.Vector.Backend == "typesense" {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatalf("Failed to initialize Typesense client: %v", err)
		}
		medicationIndex = search.NewTypesenseIndex(typesenseClient, "medication")
		symptomIndex = search.NewTypesenseIndex(typesenseClient, "symptom")
		log.Println("Using Typesense index backend")
	} else {
		medicationIndex = search.NewFileIndex("medication", cfg.Vector.StorePath)
		symptomIndex = search.NewFileIndex("symptom", cfg.Vector.StorePath)
		log.Println("Using file index backend")
	}

	// Initialize services
	indexService := services.NewIndexService(catalogAdapter, embedder, medicationIndex, symptomIndex)
	retrievalService := services.NewRetrievalService(embedder, medicationIndex, symptomIndex)
	fulfillmentService := services.NewFulfillmentService(catalogAdapter, prescriptionAdapter, eventBus)

	// Drop cached catalog responses when a confirm mutates stock
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidation.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation: %v", err)
		} else {
			defer cacheInvalidation.Stop()
		}
	}

	var reasoningProvider domainproviders.ReasoningProvider
	if openaiClient != nil {
		reasoningProvider = openaiClient
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; analysis will answer with the fallback recommendation")
	}
	analysisService := services.NewAnalysisService(retrievalService, reasoningProvider)

	// Load snapshots or build the embedding indexes before serving
	initCtx, initCancel := context.WithTimeout(ctx, 5*time.Minute)
	if err := indexService.Initialize(initCtx); err != nil {
		log.Printf("Warning: Failed to initialize embedding indexes: %v", err)
	}
	initCancel()

	// Initialize handlers
	medicationHandler := handlers.NewMedicationHandler(catalogAdapter)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	prescriptionHandler := handlers.NewPrescriptionHandler(fulfillmentService)
	indexHandler := handlers.NewIndexHandler(indexService, retrievalService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		medicationHandler,
		analysisHandler,
		prescriptionHandler,
		indexHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
