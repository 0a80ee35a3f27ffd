package usecase

import (
	"context"

	"tripack/internal/shared/eventbus"
	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/client"
	"tripack/internal/trips/domain/model"
)

// changePublisher emits a document change on both surfaces fed by writes:
// the in-process bus driving the downstream handlers, and the durable
// journal behind the change feed. The context is detached first so an
// aborted request cannot strand an event for a write that already landed.
// Journal failures are logged and never fail the originating write.
type changePublisher struct {
	bus     eventbus.EventBusInterface
	journal client.EventLog
	log     logger.Logger
	now     nowFunc
}

func newChangePublisher(bus eventbus.EventBusInterface, journal client.EventLog, log logger.Logger) *changePublisher {
	return &changePublisher{
		bus:     bus,
		journal: journal,
		log:     log,
		now:     timeNow,
	}
}

func (p *changePublisher) publish(ctx context.Context, eventType, userID, tripID, itemID string, payload interface{}) {
	detached := context.WithoutCancel(ctx)

	p.bus.PublishAndForget(detached, eventbus.NewBasicEventWithSource(eventType, payload, "trips"))

	record := model.ChangeRecord{
		Type:      eventType,
		UserID:    userID,
		TripID:    tripID,
		ItemID:    itemID,
		Data:      payload,
		Timestamp: p.now(),
	}
	if err := p.journal.Append(detached, record); err != nil {
		p.log.Warnf("Failed to journal %s for trip %s: %v", eventType, tripID, err)
	}
}
