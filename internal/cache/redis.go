// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for hand action logs.
const DefaultQueueName = "swick_actions"

// QueueName is the list actions are pushed to. Overridden from config.
var QueueName = DefaultQueueName

// HandActionRecord is one applied action of one hand, as consumed by the
// historian service.
type HandActionRecord struct {
	RoomID        uuid.UUID              `json:"room_id"`
	GameID        uuid.UUID              `json:"game_id"`
	HandNumber    int                    `json:"hand_number"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       uuid.UUID              `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"` // epoch millis
}

// ConnectRedis initializes the global Redis client and checks it with a ping.
func ConnectRedis(addr string, db int) error {
	client := NewClient(addr, db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// NewClient builds a Redis client without connecting.
func NewClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

// PublishHandAction serializes the given record to JSON, then pushes it to the Redis queue.
// This does not block the calling logic (other than a quick network send).
func PublishHandAction(ctx context.Context, record HandActionRecord) error {
	if Rdb == nil {
		return fmt.Errorf("redis client not connected")
	}
	return Push(ctx, Rdb, QueueName, record)
}

// Push appends record to the named list on client.
func Push(ctx context.Context, client redis.Cmdable, queue string, record HandActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal HandActionRecord: %w", err)
	}
	if err := client.RPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queue, err)
	}
	return nil
}

// DecodeHandAction parses one queued record.
func DecodeHandAction(payload string) (HandActionRecord, error) {
	var rec HandActionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("invalid action record: %w", err)
	}
	return rec, nil
}
