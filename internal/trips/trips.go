// Package trips wires the trips module: AI-generated packing lists in
// MongoDB, event-driven image enrichment through the generation backend
// and MinIO, derived progress counters, shared snapshots, a Redis-backed
// change journal, and realtime fan-out over websockets.
package trips

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/adapter/genai"
	tripshttp "tripack/internal/trips/adapter/http"
	"tripack/internal/trips/adapter/persistence"
	"tripack/internal/trips/adapter/persistence/mongodb"
	"tripack/internal/trips/adapter/storage"
	"tripack/internal/trips/config"
	"tripack/internal/trips/usecase"
)

// TripsModule represents the complete trips module
type TripsModule struct {
	trips      *usecase.TripUsecase
	enrichment *usecase.EnrichmentUsecase
	progress   *usecase.ProgressUsecase
	share      *usecase.ShareUsecase
	realtime   *usecase.RealtimeUsecase
	handler    *tripshttp.TripsHTTPHandler
	wsHandler  *tripshttp.WebSocketHandler
}

// NewTripsModule creates a new trips module instance and subscribes its
// event handlers on the bus.
func NewTripsModule(
	ctx context.Context,
	db *mongo.Database,
	redisClient *redis.Client,
	bus eventbus.EventBusInterface,
	cfg *config.Config,
	log logger.Logger,
) (*TripsModule, error) {
	tripRepo, err := mongodb.NewMongoTripRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip repository: %w", err)
	}
	itemRepo, err := mongodb.NewMongoItemRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create item repository: %w", err)
	}
	destCache := mongodb.NewMongoImageCacheRepository(db, "destinationImages")
	itemCache := mongodb.NewMongoImageCacheRepository(db, "itemImages")
	sharedRepo := mongodb.NewMongoSharedTripRepository(db)

	journal := persistence.NewRedisEventLog(redisClient, log)

	objectStore, err := storage.NewMinioStore(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}

	generator := genai.NewClient(cfg.GeneratorBaseURL, cfg.ImageModel, cfg.GeneratorTimeout, log)

	tripUC := usecase.NewTripUsecase(tripRepo, itemRepo, generator, bus, journal, log)
	enrichmentUC := usecase.NewEnrichmentUsecase(
		tripRepo, itemRepo, destCache, itemCache,
		generator, objectStore, bus, journal, log,
		cfg.CoverEnrichTimeout, cfg.ItemEnrichTimeout,
	)
	progressUC := usecase.NewProgressUsecase(tripRepo, itemRepo, bus, journal, log)
	shareUC := usecase.NewShareUsecase(tripRepo, itemRepo, sharedRepo, log)
	realtimeUC := usecase.NewRealtimeUsecase(log)

	// Event wiring: enrichment reacts to creations only, progress to every
	// item write, realtime to everything.
	bus.Subscribe(eventbus.EventTypeTripCreated, enrichmentUC.HandleTripCreated)
	bus.Subscribe(eventbus.EventTypeItemCreated, enrichmentUC.HandleItemCreated)
	bus.Subscribe(eventbus.EventTypeItemCreated, progressUC.HandleItemWrite)
	bus.Subscribe(eventbus.EventTypeItemUpdated, progressUC.HandleItemWrite)
	bus.Subscribe(eventbus.EventTypeItemDeleted, progressUC.HandleItemWrite)
	bus.Subscribe(eventbus.EventTypeTripCreated, realtimeUC.HandleEvent)
	bus.Subscribe(eventbus.EventTypeTripUpdated, realtimeUC.HandleEvent)
	bus.Subscribe(eventbus.EventTypeItemCreated, realtimeUC.HandleEvent)
	bus.Subscribe(eventbus.EventTypeItemUpdated, realtimeUC.HandleEvent)
	bus.Subscribe(eventbus.EventTypeItemDeleted, realtimeUC.HandleEvent)

	return &TripsModule{
		trips:      tripUC,
		enrichment: enrichmentUC,
		progress:   progressUC,
		share:      shareUC,
		realtime:   realtimeUC,
		handler:    tripshttp.NewTripsHTTPHandler(tripUC, shareUC, log),
		wsHandler:  tripshttp.NewWebSocketHandler(realtimeUC, tripUC, log),
	}, nil
}

// RegisterRoutes registers the trips REST routes behind the given protect
// middleware (the shared-trip read stays public).
func (tm *TripsModule) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	tm.handler.RegisterRoutes(router, protect)
}

// RegisterWebSocketRoutes registers the realtime listen endpoint.
func (tm *TripsModule) RegisterWebSocketRoutes(router fiber.Router, protect fiber.Handler) {
	tm.wsHandler.RegisterRoutes(router, protect)
}

// GetTripUsecase returns the trip usecase for external access
func (tm *TripsModule) GetTripUsecase() *usecase.TripUsecase {
	return tm.trips
}
