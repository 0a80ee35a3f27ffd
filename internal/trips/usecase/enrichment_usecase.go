package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/client"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/domain/repository"
)

// EnrichmentUsecase populates image URLs on newly created trip and item
// documents. Equivalent subjects share one generated image through the
// global caches: covers are keyed by the raw destination string, items by
// the lower-cased, trimmed item name.
//
// Handlers absorb every failure: a trip or item that could not be enriched
// simply keeps an empty image URL until an explicit re-run. There is no
// automatic retry. A successful write publishes the matching update event,
// so realtime subscribers and the change feed observe the resolved image.
type EnrichmentUsecase struct {
	trips     repository.TripRepository
	items     repository.ItemRepository
	destCache repository.ImageCacheRepository
	itemCache repository.ImageCacheRepository
	generator client.ImageGenerator
	objects   client.ObjectStore
	publisher *changePublisher
	log       logger.Logger

	// Wall-clock budgets per invocation. The item budget is larger since
	// generation latency dominates there.
	coverBudget time.Duration
	itemBudget  time.Duration

	now func() time.Time
}

// NewEnrichmentUsecase creates the enrichment handler pair.
func NewEnrichmentUsecase(
	trips repository.TripRepository,
	items repository.ItemRepository,
	destCache repository.ImageCacheRepository,
	itemCache repository.ImageCacheRepository,
	generator client.ImageGenerator,
	objects client.ObjectStore,
	bus eventbus.EventBusInterface,
	journal client.EventLog,
	log logger.Logger,
	coverBudget, itemBudget time.Duration,
) *EnrichmentUsecase {
	log = log.WithComponent("enrichment")
	return &EnrichmentUsecase{
		trips:       trips,
		items:       items,
		destCache:   destCache,
		itemCache:   itemCache,
		generator:   generator,
		objects:     objects,
		publisher:   newChangePublisher(bus, journal, log),
		log:         log,
		coverBudget: coverBudget,
		itemBudget:  itemBudget,
		now:         time.Now,
	}
}

// NormalizeItemKey derives the item-image cache key from an item name, so
// that "Sunglasses" and " sunglasses " collide to one cache entry.
func NormalizeItemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// coverPrompt builds the deterministic generation prompt for a trip cover.
func coverPrompt(destination string) string {
	return fmt.Sprintf("Famous sights and beautiful scenery of %s. Bright, colorful illustration in the style of a modern travel poster.", destination)
}

// itemPrompt builds the deterministic generation prompt for an item image.
func itemPrompt(name string) string {
	return fmt.Sprintf("A photo of a single %s placed on a plain white background, clean studio product photography style.", name)
}

// HandleTripCreated reacts to a trip.created event and resolves the trip's
// cover image. It always returns nil: failures are logged and absorbed.
func (uc *EnrichmentUsecase) HandleTripCreated(ctx context.Context, event eventbus.Event) error {
	change, ok := event.Data().(model.TripChange)
	if !ok || change.Trip == nil {
		uc.log.Warnf("trip.created event carried unexpected payload %T", event.Data())
		return nil
	}

	trip := change.Trip
	if trip.CoverImageURL != "" || trip.Destination == "" {
		uc.log.Debugf("Skipping cover enrichment for trip %s: already enriched or destination empty", change.TripID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.coverBudget)
	defer cancel()

	objectPath := fmt.Sprintf("destination_covers/%s_%d.png", trip.Destination, uc.now().UnixMilli())
	url, err := uc.resolveImage(ctx, uc.destCache, trip.Destination, coverPrompt(trip.Destination), objectPath)
	if err != nil {
		uc.log.Errorf("Cover enrichment failed for %q: %v", trip.Destination, err)
		return nil
	}

	updated, err := uc.trips.SetCoverImageURL(ctx, change.UserID, change.TripID, url)
	if err != nil {
		uc.log.Errorf("Failed to write cover image URL for %q: %v", trip.Destination, err)
		return nil
	}
	if updated {
		after := *trip
		after.CoverImageURL = url
		uc.publisher.publish(ctx, eventbus.EventTypeTripUpdated, change.UserID, change.TripID, "", model.TripChange{
			UserID: change.UserID,
			TripID: change.TripID,
			Trip:   &after,
		})
		uc.log.Infof("Cover image resolved for %q", trip.Destination)
	}
	return nil
}

// HandleItemCreated reacts to an item.created event and resolves the item's
// image. It always returns nil: failures are logged and absorbed.
func (uc *EnrichmentUsecase) HandleItemCreated(ctx context.Context, event eventbus.Event) error {
	change, ok := event.Data().(model.ItemChange)
	if !ok || change.After == nil {
		uc.log.Warnf("item.created event carried unexpected payload %T", event.Data())
		return nil
	}

	item := change.After
	if item.ImageURL != "" || item.Name == "" {
		uc.log.Debugf("Skipping item enrichment for %s: already enriched or name empty", change.ItemID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.itemBudget)
	defer cancel()

	key := NormalizeItemKey(item.Name)
	objectPath := fmt.Sprintf("item_images/%s.png", key)
	url, err := uc.resolveImage(ctx, uc.itemCache, key, itemPrompt(item.Name), objectPath)
	if err != nil {
		uc.log.Errorf("Item enrichment failed for %q: %v", item.Name, err)
		return nil
	}

	updated, err := uc.items.SetImageURL(ctx, change.UserID, change.TripID, change.ItemID, url)
	if err != nil {
		uc.log.Errorf("Failed to write image URL for %q: %v", item.Name, err)
		return nil
	}
	if updated {
		after := *item
		after.ImageURL = url
		uc.publisher.publish(ctx, eventbus.EventTypeItemUpdated, change.UserID, change.TripID, change.ItemID, model.ItemChange{
			UserID: change.UserID,
			TripID: change.TripID,
			ItemID: change.ItemID,
			Before: item,
			After:  &after,
		})
		uc.log.Infof("Image resolved for item %q", item.Name)
	}
	return nil
}

// resolveImage returns the public image URL for a subject key: a cache hit
// short-circuits; on a miss exactly one image is generated, stored, and the
// cache entry created. The cache create is conditional: when two handlers
// race on the same key the first writer wins and the loser adopts the
// winner's URL.
func (uc *EnrichmentUsecase) resolveImage(
	ctx context.Context,
	cache repository.ImageCacheRepository,
	key, prompt, objectPath string,
) (string, error) {
	cached, err := cache.Get(ctx, key)
	if err == nil {
		uc.log.Debugf("Image cache hit for key %q", key)
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrCacheMiss) {
		return "", fmt.Errorf("cache lookup for %q: %w", key, err)
	}

	images, err := uc.generator.GenerateImages(ctx, prompt, 1)
	if err != nil {
		return "", fmt.Errorf("image generation for %q: %w", key, err)
	}
	if len(images) == 0 {
		return "", fmt.Errorf("image generation for %q: %w", key, apperrors.ErrNoImage)
	}
	// Surplus images beyond the first are discarded.

	url, err := uc.objects.Put(ctx, objectPath, images[0], "image/png")
	if err != nil {
		return "", fmt.Errorf("object store write for %q: %w", key, err)
	}

	winner, err := cache.PutIfAbsent(ctx, key, url)
	if err != nil {
		return "", fmt.Errorf("cache create for %q: %w", key, err)
	}
	return winner, nil
}
