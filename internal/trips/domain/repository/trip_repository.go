// Package repository defines the persistence contracts the trips usecases
// depend on. Implementations live under adapter/persistence.
package repository

import (
	"context"

	"tripack/internal/trips/domain/model"
)

// TripRepository defines persistence operations for trip documents.
// All single-document operations are scoped by userID to enforce ownership.
type TripRepository interface {
	// Create inserts a new trip document.
	Create(ctx context.Context, trip *model.Trip) error

	// GetByID retrieves a trip owned by userID. Returns errors.ErrTripNotFound
	// when no such trip exists under that owner.
	GetByID(ctx context.Context, userID, tripID string) (*model.Trip, error)

	// ListByUser returns all trips for a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Trip, error)

	// SetCoverImageURL writes the cover image URL onto a trip, but only when
	// the field is still empty. Returns false when the document was already
	// enriched (or missing) and no write happened.
	SetCoverImageURL(ctx context.Context, userID, tripID, url string) (bool, error)

	// SetProgress overwrites the derived counters on a trip.
	SetProgress(ctx context.Context, userID, tripID string, total, packed int) error
}

// ItemRepository defines persistence operations for packing item documents.
type ItemRepository interface {
	// Create inserts a new item document.
	Create(ctx context.Context, item *model.PackingItem) error

	// CreateMany inserts a batch of item documents (the AI-generated list).
	CreateMany(ctx context.Context, items []*model.PackingItem) error

	// GetByID retrieves an item scoped to its owner and trip. Returns
	// errors.ErrItemNotFound when absent.
	GetByID(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error)

	// ListByTrip returns all items of a trip ordered by creation time ascending.
	ListByTrip(ctx context.Context, userID, tripID string) ([]model.PackingItem, error)

	// SetImageURL writes the image URL onto an item, but only when the field
	// is still empty. Returns false when no write happened.
	SetImageURL(ctx context.Context, userID, tripID, itemID, url string) (bool, error)

	// SetPacked updates the packed flag and returns the updated item.
	SetPacked(ctx context.Context, userID, tripID, itemID string, packed bool) (*model.PackingItem, error)

	// SetQuantity updates the quantity (already floored by the caller) and
	// returns the updated item.
	SetQuantity(ctx context.Context, userID, tripID, itemID string, quantity int) (*model.PackingItem, error)

	// Delete removes an item and returns the deleted document so the caller
	// can publish its before-snapshot. Returns errors.ErrItemNotFound when absent.
	Delete(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error)
}

// ImageCacheRepository is a keyed write-once cache of generated image URLs.
// There is one instance per subject kind (destination covers, item images).
type ImageCacheRepository interface {
	// Get returns the cached URL for a key. Returns errors.ErrCacheMiss when
	// no entry exists.
	Get(ctx context.Context, key string) (string, error)

	// PutIfAbsent creates the cache entry for a key unless one already
	// exists, and returns the URL that ended up cached. First writer wins:
	// a caller losing the create race gets the winner's URL back.
	PutIfAbsent(ctx context.Context, key, url string) (string, error)
}

// SharedTripRepository defines persistence for public trip snapshots.
type SharedTripRepository interface {
	// Create stores a new snapshot and returns its ID.
	Create(ctx context.Context, shared *model.SharedTrip) (string, error)

	// GetByID retrieves a snapshot. Returns errors.ErrSharedNotFound when absent.
	GetByID(ctx context.Context, sharedID string) (*model.SharedTrip, error)
}
