package consumer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/broker"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/normalize"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/sink"
)

// ShardReader is the subset of the stream broker the consumer drives.
type ShardReader interface {
	ActiveShard(ctx context.Context) (string, error)
	Iterator(ctx context.Context, shardID, iteratorType string) (string, error)
	Poll(ctx context.Context, token string, limit int) ([]broker.Record, string, error)
}

// ObjectStore persists one serialized batch per flush.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte) error
}

// Config holds consumer settings.
type Config struct {
	IteratorType string        // LATEST or TRIM_HORIZON
	PollLimit    int           // max records per poll
	PollInterval time.Duration // wait after an empty poll
	RetryBackoff time.Duration // wait after a transport failure
	MaxFailures  int           // consecutive transport failures before giving up
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		IteratorType: "LATEST",
		PollLimit:    100,
		PollInterval: 1 * time.Second,
		RetryBackoff: 3 * time.Second,
		MaxFailures:  5,
	}
}

// Stats summarizes consumer activity.
type Stats struct {
	Polls   int64
	Records int64
	Dropped int64
	Flushes int64
}

// Consumer drains one open shard of the stream forever, in fixed-size
// batches. It owns its cursor exclusively; no other goroutine ever touches
// it.
type Consumer struct {
	cfg    Config
	reader ShardReader
	store  ObjectStore
	keys   *sink.KeyBuilder
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a Consumer.
func New(cfg Config, reader ShardReader, store ObjectStore, keys *sink.KeyBuilder, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		reader: reader,
		store:  store,
		keys:   keys,
		logger: logger,
	}
}

// Stats returns cumulative counters.
func (c *Consumer) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Run drains the shard until ctx is cancelled. Transport failures are
// retried with a fixed backoff; after MaxFailures consecutive failures the
// error propagates to the orchestrator.
func (c *Consumer) Run(ctx context.Context) error {
	cursor, err := c.initCursor(ctx)
	if err != nil {
		return err
	}

	c.logger.Info("consumer started",
		"iterator_type", c.cfg.IteratorType,
		"poll_limit", c.cfg.PollLimit,
		"poll_interval", c.cfg.PollInterval,
	)

	pollFailures := 0
	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer stopped")
			return nil
		}

		records, next, err := c.reader.Poll(ctx, cursor, c.cfg.PollLimit)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			pollFailures++
			c.logger.Warn("poll failed",
				"error", err,
				"consecutive_failures", pollFailures,
				"backoff", c.cfg.RetryBackoff,
			)
			if pollFailures >= c.cfg.MaxFailures {
				return fmt.Errorf("poll failed %d times in a row: %w", pollFailures, err)
			}
			if !sleep(ctx, c.cfg.RetryBackoff) {
				return nil
			}
			continue
		}
		pollFailures = 0

		// The cursor is replaced by the token returned in the same call,
		// unconditionally: the broker advances it even for empty polls.
		cursor = next
		c.countPoll()

		if len(records) == 0 {
			if !sleep(ctx, c.cfg.PollInterval) {
				return nil
			}
			continue
		}

		if err := c.flush(ctx, records); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("flush batch: %w", err)
		}
	}
}

// initCursor selects the open shard and obtains the initial cursor token,
// with the same bounded retry as the poll loop.
func (c *Consumer) initCursor(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxFailures; attempt++ {
		if attempt > 0 {
			if !sleep(ctx, c.cfg.RetryBackoff) {
				return "", ctx.Err()
			}
		}

		shardID, err := c.reader.ActiveShard(ctx)
		if err != nil {
			lastErr = err
			c.logger.Warn("shard selection failed", "error", err, "attempt", attempt+1)
			continue
		}

		cursor, err := c.reader.Iterator(ctx, shardID, c.cfg.IteratorType)
		if err != nil {
			lastErr = err
			c.logger.Warn("cursor init failed", "error", err, "shard", shardID, "attempt", attempt+1)
			continue
		}

		c.logger.Info("cursor initialized", "shard", shardID)
		return cursor, nil
	}
	return "", fmt.Errorf("init cursor: %w", lastErr)
}

// flush normalizes one polled batch and persists it as a parquet object.
// Each write runs on an uncancellable context so a batch already assembled
// completes even during shutdown; no partial objects are ever written. The
// put is retried with backoff so an assembled batch survives a briefly
// unavailable store; after MaxFailures attempts the batch is abandoned and
// the error propagates.
func (c *Consumer) flush(ctx context.Context, records []broker.Record) error {
	events := make([]normalize.Event, len(records))
	for i, r := range records {
		events[i] = normalize.Event{
			Data: base64.StdEncoding.EncodeToString(r.Data),
		}
	}

	batch, dropped := normalize.Normalize(events)
	c.countBatch(int64(len(records)), int64(dropped))

	if dropped > 0 {
		c.logger.Info("dropped invalid rows", "dropped", dropped, "batch", len(records))
	}
	if len(batch) == 0 {
		return nil
	}

	object, err := sink.EncodeParquet(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	key := c.keys.Next(time.Now())
	for attempt := 1; ; attempt++ {
		err := c.store.Put(context.WithoutCancel(ctx), key, object)
		if err == nil {
			break
		}
		c.logger.Warn("store put failed",
			"error", err,
			"key", key,
			"attempt", attempt,
			"backoff", c.cfg.RetryBackoff,
		)
		if attempt >= c.cfg.MaxFailures {
			return fmt.Errorf("store batch after %d attempts: %w", attempt, err)
		}
		if !sleep(ctx, c.cfg.RetryBackoff) {
			return ctx.Err()
		}
	}

	c.countFlush()
	c.logger.Info("batch persisted",
		"key", key,
		"rows", len(batch),
		"bytes", len(object),
	)
	return nil
}

func (c *Consumer) countPoll() {
	c.mu.Lock()
	c.stats.Polls++
	c.mu.Unlock()
}

func (c *Consumer) countBatch(records, dropped int64) {
	c.mu.Lock()
	c.stats.Records += records
	c.stats.Dropped += dropped
	c.mu.Unlock()
}

func (c *Consumer) countFlush() {
	c.mu.Lock()
	c.stats.Flushes++
	c.mu.Unlock()
}

// sleep waits for d or until ctx is cancelled. Returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
