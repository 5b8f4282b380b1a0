package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medvend/backend/internal/domain/entities"
	"github.com/medvend/backend/internal/domain/providers"
)

// CacheInvalidationService drops cached catalog responses when stock changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for stock events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelStockUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to stock updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.StockEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the medication list cache after a stock change.
// Search result caches keep their short TTLs and refresh naturally: the
// retrieval layer re-checks stock against the catalog on every query, so
// a stale cached search never resurrects an out-of-stock item at confirm
// time.
func (s *CacheInvalidationService) handleEvent(event *entities.StockEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.cache.DeletePattern(ctx, "http:cache:/api/medications*"); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to invalidate medication cache")
		return
	}

	log.Debug().
		Str("event_id", event.ID).
		Str("prescription_id", event.PrescriptionID).
		Msg("invalidated medication cache")
}

// InvalidateCatalogCaches drops every cached catalog response. Called after
// a reseed or bulk import rather than on the per-prescription hot path.
func (s *CacheInvalidationService) InvalidateCatalogCaches(ctx context.Context) error {
	patterns := []string{
		"http:cache:/api/medications*",
		"http:cache:/api/symptoms*",
		"http:cache:/api/vector-store*",
	}

	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}

	return nil
}
