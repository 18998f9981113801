package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoreau/aeos-dashboard/internal/domain"
)

// SQLSource implements Source against a read-only view over the AEOS
// event log. The view exposes the same columns as the WSDL EventInfo
// schema, so both backends produce identical Event values.
type SQLSource struct {
	pool *pgxpool.Pool
}

// NewSQL creates a SQL-view-backed event source.
func NewSQL(ctx context.Context, databaseURL string) (*SQLSource, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &SQLSource{pool: pool}, nil
}

// NewSQLFromPool wraps an existing pool, used when the analytics
// service already owns the database connection.
func NewSQLFromPool(pool *pgxpool.Pool) *SQLSource {
	return &SQLSource{pool: pool}
}

func (s *SQLSource) Close() {
	s.pool.Close()
}

func (s *SQLSource) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *SQLSource) FetchEventsSince(ctx context.Context, since time.Time, limit int) ([]domain.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_type_id, event_type_name, event_time, host_name,
		       access_point_id, access_point_name, entrance_id, entrance_name,
		       identifier_id, identifier, carrier_id, carrier_full_name
		FROM vw_event_log
		WHERE event_time >= $1
		ORDER BY event_time
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, wrapQueryError(ctx, "querying event log", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var (
			e         domain.Event
			eventTime *time.Time
		)
		err := rows.Scan(
			&e.ID, &e.EventTypeID, &e.EventTypeName, &eventTime, &e.HostName,
			&e.AccessPointID, &e.AccessPointName, &e.EntranceID, &e.EntranceName,
			&e.IdentifierID, &e.Identifier, &e.CarrierID, &e.CarrierName,
		)
		if err != nil {
			return nil, wrapQueryError(ctx, "scanning event", err)
		}
		if eventTime != nil {
			e.Timestamp = eventTime.UTC()
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(ctx, "reading event rows", err)
	}
	return events, nil
}

func (s *SQLSource) AccessPoints(ctx context.Context) ([]domain.AccessPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, host_name, type, description, entrance_id
		FROM vw_access_point
		ORDER BY name
	`)
	if err != nil {
		return nil, wrapQueryError(ctx, "querying access points", err)
	}
	defer rows.Close()

	var points []domain.AccessPoint
	for rows.Next() {
		var p domain.AccessPoint
		if err := rows.Scan(&p.ID, &p.Name, &p.HostName, &p.Type, &p.Description, &p.EntranceID); err != nil {
			return nil, wrapQueryError(ctx, "scanning access point", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(ctx, "reading access point rows", err)
	}
	return points, nil
}

func (s *SQLSource) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return wrapQueryError(ctx, "pinging database", err)
	}
	return nil
}

// wrapQueryError maps pgx failures onto the source error taxonomy.
func wrapQueryError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
