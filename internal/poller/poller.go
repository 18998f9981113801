// Package poller turns the pull-style AEOS event query into a push
// feed: a fixed-interval loop that fetches everything newer than the
// watermark, classifies it, and hands the batch to the broadcaster.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoreau/aeos-dashboard/internal/classify"
	"github.com/jmoreau/aeos-dashboard/internal/domain"
	"github.com/jmoreau/aeos-dashboard/internal/metrics"
	"github.com/jmoreau/aeos-dashboard/internal/source"
)

// Publisher receives classified event batches for fan-out to live
// subscribers.
type Publisher interface {
	PublishEvents(events []domain.Event)
}

// Poller drives the sync loop. Exactly one fetch is in flight at a
// time; the watermark has no other writer.
type Poller struct {
	source       source.Source
	watermark    *Watermark
	publisher    Publisher
	logger       *slog.Logger
	interval     time.Duration
	fetchLimit   int
	fetchTimeout time.Duration
}

// New creates a poller. interval and fetchLimit come from
// configuration; fetchTimeout bounds each source round-trip so a hung
// backend cannot stall the loop.
func New(src source.Source, wm *Watermark, pub Publisher, logger *slog.Logger, interval time.Duration, fetchLimit int) *Poller {
	return &Poller{
		source:       src,
		watermark:    wm,
		publisher:    pub,
		logger:       logger,
		interval:     interval,
		fetchLimit:   fetchLimit,
		fetchTimeout: 15 * time.Second,
	}
}

// Run executes poll cycles until the context is cancelled. Source
// failures are recoverable: the loop logs them and tries again on the
// next tick, leaving the watermark untouched.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("event poller started",
		"interval", p.interval,
		"fetch_limit", p.fetchLimit,
		"watermark", p.watermark.Get(),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event poller stopping")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs one fetch-classify-publish cycle.
func (p *Poller) poll(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	since := p.watermark.Get()
	events, err := p.source.FetchEventsSince(fetchCtx, since, p.fetchLimit)
	if err != nil {
		metrics.PollFailures.Inc()
		p.logger.Warn("event poll failed", "since", since, "error", err)
		return
	}
	metrics.PollCycles.Inc()

	if len(events) == 0 {
		return
	}

	// Classify in place; the batch is published in source order.
	var maxTimestamp time.Time
	for i := range events {
		events[i].Category = classify.Event(events[i].EventTypeName)
		metrics.EventsFetched.WithLabelValues(string(events[i].Category)).Inc()

		if events[i].Timestamp.IsZero() {
			// Malformed timestamp: keep the event in the batch but
			// leave it out of the watermark computation.
			metrics.MalformedEvents.Inc()
			p.logger.Warn("event has no usable timestamp", "event_id", events[i].ID, "event_type", events[i].EventTypeName)
			continue
		}
		if events[i].Timestamp.After(maxTimestamp) {
			maxTimestamp = events[i].Timestamp
		}
	}

	if !maxTimestamp.IsZero() {
		p.watermark.Advance(maxTimestamp)
	}

	p.publisher.PublishEvents(events)
	metrics.BatchesPublished.Inc()
	p.logger.Debug("published event batch", "count", len(events), "watermark", p.watermark.Get())
}
