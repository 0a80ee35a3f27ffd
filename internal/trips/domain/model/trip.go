// Package model contains the document types stored for trips: the trip
// itself, its packing items, the two global image caches, and the public
// shared-trip snapshot.
package model

import "time"

// Trip is a user's travel plan. CoverImageURL is populated asynchronously
// by the enrichment handler and stays empty until then; the counters are
// derived state owned by the progress aggregator.
type Trip struct {
	ID               string    `json:"id" bson:"_id"`
	UserID           string    `json:"-" bson:"userId"`
	Destination      string    `json:"destination" bson:"destination"`
	Duration         int       `json:"duration" bson:"duration"`
	Summary          string    `json:"summary" bson:"summary"`
	CoverImageURL    string    `json:"coverImageUrl" bson:"coverImageUrl"`
	TotalItemsCount  int       `json:"totalItemsCount" bson:"totalItemsCount"`
	PackedItemsCount int       `json:"packedItemsCount" bson:"packedItemsCount"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
}

// PackingItem is one entry in a trip's packing checklist. ImageURL is
// populated asynchronously, like the trip's cover image.
type PackingItem struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"-" bson:"userId"`
	TripID    string    `json:"-" bson:"tripId"`
	Name      string    `json:"name" bson:"name"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Packed    bool      `json:"packed" bson:"packed"`
	ImageURL  string    `json:"imageUrl" bson:"imageUrl"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ImageCacheEntry maps a normalized subject key to a previously generated
// image's public URL. Entries are created once and never overwritten.
type ImageCacheEntry struct {
	Key string `json:"key" bson:"_id"`
	URL string `json:"url" bson:"url"`
}

// SharedItem is a packing item flattened into a shared-trip snapshot.
type SharedItem struct {
	Name      string    `json:"name" bson:"name"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	Packed    bool      `json:"packed" bson:"packed"`
	ImageURL  string    `json:"imageUrl" bson:"imageUrl"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// SharedTrip is an immutable, publicly readable snapshot of a trip. Items
// are embedded as an ordered array; the snapshot never observes later edits
// to the source trip.
type SharedTrip struct {
	ID               string       `json:"id" bson:"_id"`
	Destination      string       `json:"destination" bson:"destination"`
	Duration         int          `json:"duration" bson:"duration"`
	Summary          string       `json:"summary" bson:"summary"`
	CoverImageURL    string       `json:"coverImageUrl" bson:"coverImageUrl"`
	TotalItemsCount  int          `json:"totalItemsCount" bson:"totalItemsCount"`
	PackedItemsCount int          `json:"packedItemsCount" bson:"packedItemsCount"`
	Items            []SharedItem `json:"items" bson:"items"`
	OriginalUserID   string       `json:"originalUserId" bson:"originalUserId"`
	OriginalTripID   string       `json:"originalTripId" bson:"originalTripId"`
	CreatedAt        time.Time    `json:"createdAt" bson:"createdAt"`
}

// GeneratedItem is one entry of an AI-generated packing list.
type GeneratedItem struct {
	Name     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// GeneratedList is the result of the list generator backend: an advisory
// summary in markdown plus the proposed packing list.
type GeneratedList struct {
	Summary string          `json:"summary"`
	Items   []GeneratedItem `json:"packing_list"`
}
