package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/medvend/backend/internal/adapters/database"
	"github.com/medvend/backend/internal/adapters/embedding"
	"github.com/medvend/backend/internal/adapters/search"
	"github.com/medvend/backend/internal/application/services"
	domainproviders "github.com/medvend/backend/internal/domain/providers"
	"github.com/medvend/backend/internal/domain/repositories"
	"github.com/medvend/backend/internal/infrastructure/clients/openai"
	"github.com/medvend/backend/internal/infrastructure/clients/postgres"
	"github.com/medvend/backend/internal/infrastructure/clients/typesense"
	"github.com/medvend/backend/internal/infrastructure/observability"
	"github.com/medvend/backend/pkg/config"
)

// Rebuilds the embedding indexes from the catalog and persists the
// snapshots. With -interval it keeps rebuilding on a timer, for running
// alongside the API as a refresher.
func main() {
	interval := flag.Duration("interval", 0, "rebuild repeatedly at this interval (0 = run once)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("medvend-indexer", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()

	var embedder domainproviders.Embedder
	if cfg.Vector.Embedder == "openai" && cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Fatalf("Failed to initialize OpenAI client: %v", err)
		}
		embedder = client
	} else {
		hashingEmbedder, err := embedding.NewHashingEmbedder(cfg.Vector.Dimension)
		if err != nil {
			log.Fatalf("Failed to initialize embedder: %v", err)
		}
		embedder = hashingEmbedder
	}

	var medicationIndex, symptomIndex repositories.VectorIndex
	if cfg.Vector.Backend == "typesense" {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatalf("Failed to initialize Typesense client: %v", err)
		}
		medicationIndex = search.NewTypesenseIndex(typesenseClient, "medication")
		symptomIndex = search.NewTypesenseIndex(typesenseClient, "symptom")
	} else {
		medicationIndex = search.NewFileIndex("medication", cfg.Vector.StorePath)
		symptomIndex = search.NewFileIndex("symptom", cfg.Vector.StorePath)
	}

	indexService := services.NewIndexService(
		database.NewMedicationAdapter(pgClient),
		embedder,
		medicationIndex,
		symptomIndex,
	)

	rebuild := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		if err := indexService.Rebuild(ctx); err != nil {
			log.Printf("Index rebuild failed: %v", err)
			return
		}
		log.Printf("Index rebuild completed in %v", time.Since(start))
	}

	rebuild()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		rebuild()
	}
}
