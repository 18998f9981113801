package poller

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// watermarkKey is where the persistent watermark lives in Redis.
const watermarkKey = "aeos:watermark"

const persistTimeout = 2 * time.Second

// Watermark tracks the timestamp of the newest event already delivered
// to subscribers. The poller is its only writer, so the value is a
// single atomic scalar (unix nanos) rather than a locked struct.
//
// With a Redis client attached the value survives restarts, closing
// the gap where events arriving during downtime were silently skipped.
// Without one, a restart re-synchronizes from process start.
type Watermark struct {
	nanos  atomic.Int64
	client *redis.Client
	logger *slog.Logger
}

// NewWatermark creates an in-memory watermark starting at start.
func NewWatermark(start time.Time) *Watermark {
	w := &Watermark{}
	w.nanos.Store(start.UnixNano())
	return w
}

// NewPersistentWatermark creates a Redis-backed watermark. A value
// stored by a previous run takes precedence over start; a load failure
// falls back to start and is never fatal.
func NewPersistentWatermark(ctx context.Context, client *redis.Client, start time.Time, logger *slog.Logger) *Watermark {
	w := &Watermark{client: client, logger: logger}
	w.nanos.Store(start.UnixNano())

	val, err := client.Get(ctx, watermarkKey).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("failed to load persisted watermark, starting from now", "error", err)
		}
		return w
	}
	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		logger.Warn("persisted watermark is not a timestamp, starting from now", "value", val)
		return w
	}
	w.nanos.Store(nanos)
	logger.Info("resumed watermark from redis", "watermark", time.Unix(0, nanos).UTC())
	return w
}

// Get returns the current watermark.
func (w *Watermark) Get() time.Time {
	return time.Unix(0, w.nanos.Load()).UTC()
}

// Advance moves the watermark to candidate if candidate is newer.
// Out-of-order batches can therefore never move it backwards.
func (w *Watermark) Advance(candidate time.Time) {
	nanos := candidate.UnixNano()
	for {
		current := w.nanos.Load()
		if nanos <= current {
			return
		}
		if w.nanos.CompareAndSwap(current, nanos) {
			break
		}
	}
	w.persist(nanos)
}

// persist writes the watermark through to Redis, best effort. The
// in-memory value is already advanced; a persistence failure only
// widens the replay window after a restart.
func (w *Watermark) persist(nanos int64) {
	if w.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := w.client.Set(ctx, watermarkKey, strconv.FormatInt(nanos, 10), 0).Err(); err != nil {
		w.logger.Warn("failed to persist watermark", "error", err)
	}
}
