package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/domain/repository"
)

// ShareUsecase publishes read-only snapshots of trips. A snapshot is a
// frozen copy taken at share time and never follows later edits to the
// source trip; sharing twice produces two independent snapshots.
type ShareUsecase struct {
	trips  repository.TripRepository
	items  repository.ItemRepository
	shared repository.SharedTripRepository
	log    logger.Logger
	now    nowFunc
}

func NewShareUsecase(
	trips repository.TripRepository,
	items repository.ItemRepository,
	shared repository.SharedTripRepository,
	log logger.Logger,
) *ShareUsecase {
	return &ShareUsecase{
		trips:  trips,
		items:  items,
		shared: shared,
		log:    log.WithComponent("share"),
		now:    timeNow,
	}
}

// ShareTrip snapshots the caller's trip and returns the public snapshot ID.
func (uc *ShareUsecase) ShareTrip(ctx context.Context, userID, tripID string) (string, error) {
	if userID == "" {
		return "", apperrors.NewUnauthenticatedError("you must be signed in to share a trip")
	}
	tripID = strings.TrimSpace(tripID)
	if tripID == "" {
		return "", apperrors.NewValidationError("tripId is required")
	}

	trip, err := uc.trips.GetByID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTripNotFound) {
			return "", apperrors.NewNotFoundError("trip")
		}
		return "", apperrors.WrapError(err, "failed to load trip for sharing")
	}

	items, err := uc.items.ListByTrip(ctx, userID, tripID)
	if err != nil {
		return "", apperrors.WrapError(err, "failed to load items for sharing")
	}

	snapshot := &model.SharedTrip{
		ID:               uuid.NewString(),
		Destination:      trip.Destination,
		Duration:         trip.Duration,
		Summary:          trip.Summary,
		CoverImageURL:    trip.CoverImageURL,
		TotalItemsCount:  trip.TotalItemsCount,
		PackedItemsCount: trip.PackedItemsCount,
		Items:            make([]model.SharedItem, 0, len(items)),
		OriginalUserID:   userID,
		OriginalTripID:   tripID,
		CreatedAt:        uc.now(),
	}
	for _, item := range items {
		snapshot.Items = append(snapshot.Items, model.SharedItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Packed:    item.Packed,
			ImageURL:  item.ImageURL,
			CreatedAt: item.CreatedAt,
		})
	}

	sharedID, err := uc.shared.Create(ctx, snapshot)
	if err != nil {
		return "", apperrors.WrapError(err, "failed to persist shared trip")
	}

	uc.log.Infof("Trip %s shared as %s", tripID, sharedID)
	return sharedID, nil
}

// GetShared fetches a snapshot by its public ID. No authentication is
// required: anyone holding the ID may read it.
func (uc *ShareUsecase) GetShared(ctx context.Context, sharedID string) (*model.SharedTrip, error) {
	sharedID = strings.TrimSpace(sharedID)
	if sharedID == "" {
		return nil, apperrors.NewValidationError("sharedId is required")
	}

	snapshot, err := uc.shared.GetByID(ctx, sharedID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSharedNotFound) {
			return nil, apperrors.NewNotFoundError("shared trip")
		}
		return nil, apperrors.WrapError(err, "failed to load shared trip")
	}
	return snapshot, nil
}
