package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/client"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/domain/repository"
)

type nowFunc func() time.Time

var timeNow nowFunc = time.Now

// TripUsecase implements the trip and item lifecycle. Every successful
// write publishes a change event on the in-process bus and appends the same
// change to the durable journal; downstream enrichment, progress and
// realtime handlers hang off those events.
type TripUsecase struct {
	trips     repository.TripRepository
	items     repository.ItemRepository
	generator client.ListGenerator
	publisher *changePublisher
	journal   client.EventLog
	log       logger.Logger
	now       nowFunc
}

func NewTripUsecase(
	trips repository.TripRepository,
	items repository.ItemRepository,
	generator client.ListGenerator,
	bus eventbus.EventBusInterface,
	journal client.EventLog,
	log logger.Logger,
) *TripUsecase {
	log = log.WithComponent("trips")
	return &TripUsecase{
		trips:     trips,
		items:     items,
		generator: generator,
		publisher: newChangePublisher(bus, journal, log),
		journal:   journal,
		log:       log,
		now:       timeNow,
	}
}

// CreateTrip asks the list generator for a packing list, persists the trip
// document and one item document per suggestion, then publishes the change
// events that drive enrichment. Items start unpacked with empty image URLs;
// the trip starts with an empty cover URL and totalItemsCount already set.
func (uc *TripUsecase) CreateTrip(ctx context.Context, userID, destination string, days int) (*model.Trip, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, apperrors.NewValidationError("destination is required")
	}
	if days < 1 {
		return nil, apperrors.NewValidationError("duration must be at least one day")
	}

	list, err := uc.generator.GeneratePackingList(ctx, destination, days)
	if err != nil {
		return nil, apperrors.WrapError(err, "packing list generation failed")
	}

	now := uc.now()
	trip := &model.Trip{
		ID:               uuid.NewString(),
		UserID:           userID,
		Destination:      destination,
		Duration:         days,
		Summary:          list.Summary,
		TotalItemsCount:  len(list.Items),
		PackedItemsCount: 0,
		CreatedAt:        now,
	}
	if err := uc.trips.Create(ctx, trip); err != nil {
		return nil, apperrors.WrapError(err, "failed to persist trip")
	}

	items := make([]*model.PackingItem, 0, len(list.Items))
	for i, suggestion := range list.Items {
		quantity := suggestion.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, &model.PackingItem{
			ID:       uuid.NewString(),
			UserID:   userID,
			TripID:   trip.ID,
			Name:     suggestion.Name,
			Quantity: quantity,
			Packed:   false,
			// Millisecond offsets keep the generated order stable under
			// the createdAt sort.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		})
	}
	if len(items) > 0 {
		if err := uc.items.CreateMany(ctx, items); err != nil {
			return nil, apperrors.WrapError(err, "failed to persist packing items")
		}
	}

	uc.publish(ctx, eventbus.EventTypeTripCreated, userID, trip.ID, "", model.TripChange{
		UserID: userID,
		TripID: trip.ID,
		Trip:   trip,
	})
	for _, item := range items {
		uc.publish(ctx, eventbus.EventTypeItemCreated, userID, trip.ID, item.ID, model.ItemChange{
			UserID: userID,
			TripID: trip.ID,
			ItemID: item.ID,
			After:  item,
		})
	}

	uc.log.Infof("Trip created for %q with %d items", destination, len(items))
	return trip, nil
}

// GetTrip returns a single trip owned by the caller.
func (uc *TripUsecase) GetTrip(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	trip, err := uc.trips.GetByID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTripNotFound) {
			return nil, apperrors.NewNotFoundError("trip")
		}
		return nil, apperrors.WrapError(err, "failed to load trip")
	}
	return trip, nil
}

// ListTrips returns the caller's trips, newest first.
func (uc *TripUsecase) ListTrips(ctx context.Context, userID string) ([]model.Trip, error) {
	trips, err := uc.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to list trips")
	}
	return trips, nil
}

// ListItems returns the items of one of the caller's trips in creation order.
func (uc *TripUsecase) ListItems(ctx context.Context, userID, tripID string) ([]model.PackingItem, error) {
	if _, err := uc.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	items, err := uc.items.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to list items")
	}
	return items, nil
}

// AddItem appends a manual item to an existing trip and publishes the
// item.created event that triggers its enrichment.
func (uc *TripUsecase) AddItem(ctx context.Context, userID, tripID, name string) (*model.PackingItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("item name is required")
	}
	if _, err := uc.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	item := &model.PackingItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		TripID:    tripID,
		Name:      name,
		Quantity:  1,
		Packed:    false,
		CreatedAt: uc.now(),
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, apperrors.WrapError(err, "failed to persist item")
	}

	uc.publish(ctx, eventbus.EventTypeItemCreated, userID, tripID, item.ID, model.ItemChange{
		UserID: userID,
		TripID: tripID,
		ItemID: item.ID,
		After:  item,
	})
	return item, nil
}

// SetItemPacked toggles an item's packed flag.
func (uc *TripUsecase) SetItemPacked(ctx context.Context, userID, tripID, itemID string, packed bool) (*model.PackingItem, error) {
	before, err := uc.getItem(ctx, userID, tripID, itemID)
	if err != nil {
		return nil, err
	}
	after, err := uc.items.SetPacked(ctx, userID, tripID, itemID, packed)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to update item")
	}

	uc.publish(ctx, eventbus.EventTypeItemUpdated, userID, tripID, itemID, model.ItemChange{
		UserID: userID,
		TripID: tripID,
		ItemID: itemID,
		Before: before,
		After:  after,
	})
	return after, nil
}

// SetItemQuantity updates an item's quantity, clamping to a minimum of one.
func (uc *TripUsecase) SetItemQuantity(ctx context.Context, userID, tripID, itemID string, quantity int) (*model.PackingItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	before, err := uc.getItem(ctx, userID, tripID, itemID)
	if err != nil {
		return nil, err
	}
	after, err := uc.items.SetQuantity(ctx, userID, tripID, itemID, quantity)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to update item")
	}

	uc.publish(ctx, eventbus.EventTypeItemUpdated, userID, tripID, itemID, model.ItemChange{
		UserID: userID,
		TripID: tripID,
		ItemID: itemID,
		Before: before,
		After:  after,
	})
	return after, nil
}

// DeleteItem removes an item and publishes the item.deleted event so the
// trip's progress counters catch up.
func (uc *TripUsecase) DeleteItem(ctx context.Context, userID, tripID, itemID string) error {
	deleted, err := uc.items.Delete(ctx, userID, tripID, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrItemNotFound) {
			return apperrors.NewNotFoundError("item")
		}
		return apperrors.WrapError(err, "failed to delete item")
	}

	uc.publish(ctx, eventbus.EventTypeItemDeleted, userID, tripID, itemID, model.ItemChange{
		UserID: userID,
		TripID: tripID,
		ItemID: itemID,
		Before: deleted,
	})
	return nil
}

// RerunEnrichment republishes creation events for the trip and any of its
// items still missing an image URL. Already-enriched documents are skipped
// by the handlers' preconditions, so re-running is always safe.
func (uc *TripUsecase) RerunEnrichment(ctx context.Context, userID, tripID string) (int, error) {
	trip, err := uc.GetTrip(ctx, userID, tripID)
	if err != nil {
		return 0, err
	}

	republished := 0
	if trip.CoverImageURL == "" {
		uc.publish(ctx, eventbus.EventTypeTripCreated, userID, tripID, "", model.TripChange{
			UserID: userID,
			TripID: tripID,
			Trip:   trip,
		})
		republished++
	}

	items, err := uc.items.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return republished, apperrors.WrapError(err, "failed to list items")
	}
	for i := range items {
		item := items[i]
		if item.ImageURL != "" {
			continue
		}
		uc.publish(ctx, eventbus.EventTypeItemCreated, userID, tripID, item.ID, model.ItemChange{
			UserID: userID,
			TripID: tripID,
			ItemID: item.ID,
			After:  &item,
		})
		republished++
	}

	uc.log.Infof("Re-ran enrichment for trip %s: %d events republished", tripID, republished)
	return republished, nil
}

// ChangeFeed returns the journaled change records for a trip that are newer
// than the given resume token. An empty token reads from the beginning.
func (uc *TripUsecase) ChangeFeed(ctx context.Context, userID, tripID, since string) ([]model.ChangeRecord, error) {
	if _, err := uc.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	records, err := uc.journal.ReadSince(ctx, userID, tripID, since)
	if err != nil {
		return nil, apperrors.WrapError(err, "failed to read change feed")
	}
	return records, nil
}

func (uc *TripUsecase) getItem(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	item, err := uc.items.GetByID(ctx, userID, tripID, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrItemNotFound) {
			return nil, apperrors.NewNotFoundError("item")
		}
		return nil, apperrors.WrapError(err, "failed to load item")
	}
	return item, nil
}

// publish fans a change out to the in-process bus and the durable journal.
// The context is detached from the request first: fasthttp recycles request
// contexts, and async handlers must outlive the response.
func (uc *TripUsecase) publish(ctx context.Context, eventType, userID, tripID, itemID string, payload interface{}) {
	uc.publisher.publish(ctx, eventType, userID, tripID, itemID, payload)
}
