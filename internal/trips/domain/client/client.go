// Package client defines the outbound dependencies of the trips module:
// the generative AI backend, the public object store, and the durable
// change-event log.
package client

import (
	"context"

	"tripack/internal/trips/domain/model"
)

// ListGenerator produces an AI packing list and advisory summary for a
// destination and trip length.
type ListGenerator interface {
	GeneratePackingList(ctx context.Context, destination string, days int) (*model.GeneratedList, error)
}

// ImageGenerator requests images from a text-to-image model. It returns
// zero or more decoded image payloads; callers use the first and discard
// any surplus.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompt string, count int) ([][]byte, error)
}

// ObjectStore stores generated images as publicly readable blobs.
type ObjectStore interface {
	// Put writes data at objectPath with the given content type, marks it
	// publicly readable, and returns its public URL.
	Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// EventLog is a durable, per-trip journal of document change events.
// Appends are best-effort from the publisher's point of view; reads return
// records after the given resume token (empty token means from the start).
type EventLog interface {
	Append(ctx context.Context, record model.ChangeRecord) error
	ReadSince(ctx context.Context, userID, tripID, sinceToken string) ([]model.ChangeRecord, error)
}
