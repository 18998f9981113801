// Package source pulls raw access events out of an AEOS installation.
//
// Two backends exist: the aeosws SOAP web service (findEvent) and a
// read-only SQL view over the event log. Both satisfy Source, so the
// poller does not care which one the deployment configured.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/jmoreau/aeos-dashboard/internal/domain"
)

var (
	// ErrUnavailable indicates the backend could not be reached or the
	// query failed. Safe to retry on the next poll cycle.
	ErrUnavailable = errors.New("event source unavailable")

	// ErrTimeout indicates the backend did not answer within the fetch
	// deadline. Safe to retry on the next poll cycle.
	ErrTimeout = errors.New("event source timed out")
)

// Source is the pull side of the live feed. FetchEventsSince returns
// events with Timestamp >= since, up to limit, in backend order. The
// backend's time resolution may be coarser than the polling cadence,
// so already-delivered events can reappear; the caller deduplicates
// via its watermark.
type Source interface {
	FetchEventsSince(ctx context.Context, since time.Time, limit int) ([]domain.Event, error)

	// AccessPoints returns the installation's access-point directory.
	AccessPoints(ctx context.Context) ([]domain.AccessPoint, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
