// cmd/historian/main.go is an asynchronous historian service that pops match
// events from the Redis journal queue and persists them to PostgreSQL. It
// also prunes durable room and match records that have been inactive long
// past any reconnect window.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"gridline/internal/cache"
	"gridline/internal/database"
)

// HistorianService encapsulates the Redis and DB logic for capturing match
// events and pruning long-dead room records.
type HistorianService struct {
	redisClient *redis.Client
	batchSize   int
	flushDelay  time.Duration
	retention   time.Duration

	batchMu  sync.Mutex
	batch    []cache.MatchEventRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment
// variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)
	retentionHrs := getEnvInt("ROOM_RETENTION_HOURS", 24)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		retention:   time.Duration(retentionHrs) * time.Hour,
		batch:       make([]cache.MatchEventRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the consume and prune loops.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readRedisLoop()
	go hs.pruneLoop()

	log.Println("gridline-historian service started.")
	<-hs.ctx.Done()
	log.Println("gridline-historian shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve journal entries.
func (hs *HistorianService) readRedisLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("MATCH_EVENT_QUEUE_NAME", cache.DefaultQueueName)

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			// res[0] is the queue name and res[1] the payload.
			var record cache.MatchEventRecord
			if err := json.Unmarshal([]byte(res[1]), &record); err != nil {
				log.Printf("invalid match event record: %v\n", err)
				continue
			}
			hs.appendToBatch(record)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the
// threshold is reached.
func (hs *HistorianService) appendToBatch(record cache.MatchEventRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, record)
	if len(hs.batch) >= hs.batchSize {
		hs.flushLocked()
	}
}

// flushBatchToDB flushes the current batch to the database.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked()
}

func (hs *HistorianService) flushLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]cache.MatchEventRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	ctx := context.Background()
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertMatchEventTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertMatchEventTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush match events: %v\n", err)
	} else {
		log.Printf("Flushed %d match events to DB.\n", len(batchCopy))
	}
}

// pruneLoop periodically drops durable room and match records whose last
// activity is older than the retention window. The live server evicts idle
// rooms itself; this catches records orphaned by a crash.
func (hs *HistorianService) pruneLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.pruneStaleRooms()
		}
	}
}

func (hs *HistorianService) pruneStaleRooms() {
	ctx := context.Background()
	cutoff := time.Now().Add(-hs.retention)
	err := pgx.BeginTxFunc(ctx, database.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM matches WHERE room_id IN (SELECT room_id FROM rooms WHERE last_activity < $1)`,
			cutoff,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE last_activity < $1`, cutoff)
		if err != nil {
			return err
		}
		if n := tag.RowsAffected(); n > 0 {
			log.Printf("Pruned %d stale rooms.\n", n)
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] prune stale rooms: %v\n", err)
	}
}

// insertMatchEventTx inserts a single journal entry into the match_events
// table.
func insertMatchEventTx(ctx context.Context, tx pgx.Tx, rec cache.MatchEventRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	q := `
		INSERT INTO match_events (room_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.Exec(ctx, q, rec.RoomID, rec.EventType, payload, rec.Timestamp)
	return err
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.flushBatchToDB()
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
