// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the global Redis client. Connect it once at application startup; it
// may stay nil when Redis is not configured, in which case the journal is a
// no-op.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for the match event journal.
var DefaultQueueName = "gridline_match_events"

// MatchEventRecord is one journaled match event, consumed asynchronously by
// the historian service.
type MatchEventRecord struct {
	RoomID    string                 `json:"room_id"`
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// PublishMatchEvent serializes the record and pushes it onto the journal
// queue in the background. Journaling is best effort and never blocks or
// fails a game state transition.
func PublishMatchEvent(record MatchEventRecord) {
	if Rdb == nil {
		return
	}
	go func() {
		data, err := json.Marshal(record)
		if err != nil {
			logrus.WithError(err).Warn("failed to marshal match event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		queueName := getEnv("MATCH_EVENT_QUEUE_NAME", DefaultQueueName)
		if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
			logrus.WithError(err).Warnf("failed to RPush to Redis list '%s'", queueName)
		}
	}()
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
