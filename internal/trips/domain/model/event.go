package model

import "time"

// TripChange is the payload of a trip.created event.
type TripChange struct {
	UserID string `json:"userId"`
	TripID string `json:"tripId"`
	Trip   *Trip  `json:"trip"`
}

// ItemChange is the payload of an item.created/updated/deleted event.
// Before is nil on create, After is nil on delete.
type ItemChange struct {
	UserID string       `json:"userId"`
	TripID string       `json:"tripId"`
	ItemID string       `json:"itemId"`
	Before *PackingItem `json:"before,omitempty"`
	After  *PackingItem `json:"after,omitempty"`
}

// ChangeRecord is the journaled form of a document change event, as stored
// in the durable event log and streamed to realtime subscribers. ID is the
// log entry's resume token; it is empty until the record has been appended.
type ChangeRecord struct {
	ID        string      `json:"id,omitempty"`
	Type      string      `json:"type"`
	UserID    string      `json:"userId"`
	TripID    string      `json:"tripId"`
	ItemID    string      `json:"itemId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
