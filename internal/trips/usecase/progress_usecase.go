package usecase

import (
	"context"

	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/client"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/domain/repository"
)

// ProgressUsecase keeps the denormalized item counters on a trip document
// in sync with its items subcollection. Every item write triggers a full
// rescan of the trip's items, which makes the recomputation self-healing:
// a missed event is repaired by the next one. A successful counter write
// publishes trip.updated so subscribers see the new counts.
type ProgressUsecase struct {
	trips     repository.TripRepository
	items     repository.ItemRepository
	publisher *changePublisher
	log       logger.Logger
}

func NewProgressUsecase(
	trips repository.TripRepository,
	items repository.ItemRepository,
	bus eventbus.EventBusInterface,
	journal client.EventLog,
	log logger.Logger,
) *ProgressUsecase {
	log = log.WithComponent("progress")
	return &ProgressUsecase{
		trips:     trips,
		items:     items,
		publisher: newChangePublisher(bus, journal, log),
		log:       log,
	}
}

// HandleItemWrite recomputes totalItemsCount and packedItemsCount for the
// trip named by the event. It always returns nil: failures are logged and
// absorbed, since the next item write recomputes from scratch anyway.
func (uc *ProgressUsecase) HandleItemWrite(ctx context.Context, event eventbus.Event) error {
	change, ok := event.Data().(model.ItemChange)
	if !ok {
		uc.log.Warnf("item event carried unexpected payload %T", event.Data())
		return nil
	}

	items, err := uc.items.ListByTrip(ctx, change.UserID, change.TripID)
	if err != nil {
		uc.log.Errorf("Failed to rescan items for trip %s: %v", change.TripID, err)
		return nil
	}

	total := len(items)
	packed := 0
	for _, item := range items {
		if item.Packed {
			packed++
		}
	}

	if err := uc.trips.SetProgress(ctx, change.UserID, change.TripID, total, packed); err != nil {
		uc.log.Errorf("Failed to update progress for trip %s: %v", change.TripID, err)
		return nil
	}

	trip, err := uc.trips.GetByID(ctx, change.UserID, change.TripID)
	if err != nil {
		uc.log.Warnf("Progress written but trip %s could not be reloaded for publish: %v", change.TripID, err)
		return nil
	}
	uc.publisher.publish(ctx, eventbus.EventTypeTripUpdated, change.UserID, change.TripID, "", model.TripChange{
		UserID: change.UserID,
		TripID: change.TripID,
		Trip:   trip,
	})

	uc.log.Debugf("Progress for trip %s: %d/%d packed", change.TripID, packed, total)
	return nil
}
