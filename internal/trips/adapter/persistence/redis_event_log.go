// Package persistence holds non-MongoDB persistence adapters for the trips
// module, currently the Redis Streams change journal.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tripack/internal/shared/logger"
	"tripack/internal/trips/domain/model"
)

// maxFeedBatch caps how many journal entries a single read returns.
const maxFeedBatch = 1000

// RedisEventLog implements the EventLog interface using Redis Streams.
// Each trip gets its own stream; the Redis message ID doubles as the
// resume token handed back to change-feed clients.
type RedisEventLog struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisEventLog creates a new Redis-based change journal
func NewRedisEventLog(client *redis.Client, log logger.Logger) *RedisEventLog {
	return &RedisEventLog{
		client: client,
		logger: log.WithComponent("eventlog"),
	}
}

func streamName(userID, tripID string) string {
	return fmt.Sprintf("trips:%s:%s:events", userID, tripID)
}

// Append journals a change record on the trip's stream
func (r *RedisEventLog) Append(ctx context.Context, record model.ChangeRecord) error {
	data, err := json.Marshal(record.Data)
	if err != nil {
		r.logger.Error("Failed to serialize change payload", zap.Error(err))
		return err
	}

	stream := streamName(record.UserID, record.TripID)
	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"type":      record.Type,
			"userId":    record.UserID,
			"tripId":    record.TripID,
			"itemId":    record.ItemID,
			"data":      data,
			"timestamp": record.Timestamp.UnixNano(),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to append change record",
			zap.String("stream", stream),
			zap.String("type", record.Type),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Change record journaled",
		zap.String("stream", stream),
		zap.String("type", record.Type))
	return nil
}

// ReadSince returns the journaled changes of a trip newer than the given
// resume token. An empty token reads from the start of the stream.
func (r *RedisEventLog) ReadSince(ctx context.Context, userID, tripID, sinceToken string) ([]model.ChangeRecord, error) {
	stream := streamName(userID, tripID)
	lastID := "0"
	if sinceToken != "" {
		lastID = sinceToken
	}

	// A missing stream just means no changes were journaled yet
	exists, err := r.client.Exists(ctx, stream).Result()
	if err != nil {
		r.logger.Error("Failed to check stream existence",
			zap.String("stream", stream),
			zap.Error(err))
		return nil, err
	}
	if exists == 0 {
		return []model.ChangeRecord{}, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.client.XRead(readCtx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   maxFeedBatch,
		Block:   0,
	}).Result()

	if err != nil {
		if err == redis.Nil || err == context.DeadlineExceeded {
			return []model.ChangeRecord{}, nil
		}
		r.logger.Error("Failed to read change records",
			zap.String("stream", stream),
			zap.String("resumeToken", sinceToken),
			zap.Error(err))
		return nil, err
	}

	records := make([]model.ChangeRecord, 0)
	for _, streamRes := range res {
		for _, msg := range streamRes.Messages {
			record, err := r.parseRecord(msg)
			if err != nil {
				r.logger.Warn("Skipping unparseable journal entry",
					zap.String("messageId", msg.ID),
					zap.Error(err))
				continue
			}
			records = append(records, record)
		}
	}

	r.logger.Debug("Change records read",
		zap.String("stream", stream),
		zap.Int("count", len(records)))
	return records, nil
}

func (r *RedisEventLog) parseRecord(msg redis.XMessage) (model.ChangeRecord, error) {
	record := model.ChangeRecord{ID: msg.ID}

	if v, ok := msg.Values["type"].(string); ok {
		record.Type = v
	}
	if v, ok := msg.Values["userId"].(string); ok {
		record.UserID = v
	}
	if v, ok := msg.Values["tripId"].(string); ok {
		record.TripID = v
	}
	if v, ok := msg.Values["itemId"].(string); ok {
		record.ItemID = v
	}
	if v, ok := msg.Values["timestamp"].(string); ok {
		nanos, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return model.ChangeRecord{}, fmt.Errorf("bad timestamp %q: %w", v, err)
		}
		record.Timestamp = time.Unix(0, nanos)
	}
	if v, ok := msg.Values["data"].(string); ok && v != "" && v != "null" {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(v), &data); err != nil {
			return model.ChangeRecord{}, fmt.Errorf("bad data payload: %w", err)
		}
		record.Data = data
	}

	return record, nil
}
