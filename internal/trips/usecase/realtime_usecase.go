package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/model"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber whose
// buffer is full when a change arrives misses that change; clients recover
// by re-reading the change feed with their last resume token.
const subscriberBuffer = 16

// RealtimeUsecase fans document change events out to websocket subscribers.
// Subscriptions are keyed by owner and trip, so a connection only ever sees
// changes to a trip it subscribed to.
type RealtimeUsecase struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan model.ChangeRecord
	log         logger.Logger
}

func NewRealtimeUsecase(log logger.Logger) *RealtimeUsecase {
	return &RealtimeUsecase{
		subscribers: make(map[string]map[string]chan model.ChangeRecord),
		log:         log.WithComponent("realtime"),
	}
}

func tripKey(userID, tripID string) string {
	return userID + "/" + tripID
}

// Subscribe registers a listener for one trip's changes and returns the
// subscription ID together with the delivery channel. The channel is closed
// on Unsubscribe.
func (uc *RealtimeUsecase) Subscribe(userID, tripID string) (string, <-chan model.ChangeRecord) {
	key := tripKey(userID, tripID)
	subID := uuid.NewString()
	ch := make(chan model.ChangeRecord, subscriberBuffer)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.subscribers[key] == nil {
		uc.subscribers[key] = make(map[string]chan model.ChangeRecord)
	}
	uc.subscribers[key][subID] = ch

	uc.log.Debugf("Subscriber %s attached to trip %s", subID, tripID)
	return subID, ch
}

// Unsubscribe removes a listener and closes its channel.
func (uc *RealtimeUsecase) Unsubscribe(userID, tripID, subID string) {
	key := tripKey(userID, tripID)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	subs, ok := uc.subscribers[key]
	if !ok {
		return
	}
	ch, ok := subs[subID]
	if !ok {
		return
	}
	delete(subs, subID)
	if len(subs) == 0 {
		delete(uc.subscribers, key)
	}
	close(ch)

	uc.log.Debugf("Subscriber %s detached from trip %s", subID, tripID)
}

// SubscriberCount reports the number of listeners attached to a trip.
func (uc *RealtimeUsecase) SubscriberCount(userID, tripID string) int {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return len(uc.subscribers[tripKey(userID, tripID)])
}

// HandleEvent receives every bus event and forwards it to the trip's
// subscribers. Delivery is non-blocking: a full subscriber buffer drops the
// record rather than stalling the bus. Always returns nil.
func (uc *RealtimeUsecase) HandleEvent(ctx context.Context, event eventbus.Event) error {
	record, ok := uc.toRecord(event)
	if !ok {
		return nil
	}

	uc.mu.RLock()
	defer uc.mu.RUnlock()
	subs := uc.subscribers[tripKey(record.UserID, record.TripID)]
	for subID, ch := range subs {
		select {
		case ch <- record:
		default:
			uc.log.Warnf("Dropping %s for slow subscriber %s", record.Type, subID)
		}
	}
	return nil
}

func (uc *RealtimeUsecase) toRecord(event eventbus.Event) (model.ChangeRecord, bool) {
	record := model.ChangeRecord{
		Type:      event.Type(),
		Timestamp: event.Timestamp(),
	}
	switch payload := event.Data().(type) {
	case model.TripChange:
		record.UserID = payload.UserID
		record.TripID = payload.TripID
		record.Data = payload
	case model.ItemChange:
		record.UserID = payload.UserID
		record.TripID = payload.TripID
		record.ItemID = payload.ItemID
		record.Data = payload
	default:
		uc.log.Warnf("Event %s carried unexpected payload %T", event.Type(), event.Data())
		return model.ChangeRecord{}, false
	}
	return record, true
}
