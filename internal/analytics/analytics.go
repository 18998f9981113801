// Package analytics serves aggregate queries straight off the
// read-only event-log view. Nothing here touches the live feed or the
// watermark: reports may reflect a different instant than the push
// stream, which is acceptable for dashboard use.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// HourlyBucket is one hour of traffic with its granted/denied split.
type HourlyBucket struct {
	Hour       int `json:"hour"`
	EventCount int `json:"event_count"`
	Granted    int `json:"granted"`
	Denied     int `json:"denied"`
}

// AccessPointTraffic is the event volume of one access point.
type AccessPointTraffic struct {
	AccessPointName string `json:"access_point_name"`
	EventCount      int    `json:"event_count"`
	Granted         int    `json:"granted"`
	Denied          int    `json:"denied"`
}

// Alert is one security-relevant event with a display description.
type Alert struct {
	Timestamp       time.Time `json:"timestamp"`
	EventTypeName   string    `json:"event_type_name"`
	AccessPointName string    `json:"access_point_name,omitempty"`
	EntranceName    string    `json:"entrance_name,omitempty"`
	CarrierName     string    `json:"carrier_name,omitempty"`
	Identifier      string    `json:"identifier,omitempty"`
	Description     string    `json:"description"`
}

// HourlyTraffic returns per-hour counts for [dayStart, dayStart+24h).
func (s *Service) HourlyTraffic(ctx context.Context, dayStart time.Time) ([]HourlyBucket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM event_time)::int AS hour,
		       COUNT(*) AS event_count,
		       COUNT(*) FILTER (WHERE event_type_name LIKE 'Access granted%') AS granted,
		       COUNT(*) FILTER (WHERE event_type_name LIKE 'Access denied%') AS denied
		FROM vw_event_log
		WHERE event_time >= $1 AND event_time < $2
		GROUP BY 1
		ORDER BY 1
	`, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("querying hourly traffic: %w", err)
	}
	defer rows.Close()

	buckets := []HourlyBucket{}
	for rows.Next() {
		var b HourlyBucket
		if err := rows.Scan(&b.Hour, &b.EventCount, &b.Granted, &b.Denied); err != nil {
			return nil, fmt.Errorf("scanning hourly bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hourly rows: %w", err)
	}
	return buckets, nil
}

// TopAccessPoints returns the busiest access points since the cutoff.
func (s *Service) TopAccessPoints(ctx context.Context, since time.Time, limit int) ([]AccessPointTraffic, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT access_point_name,
		       COUNT(*) AS event_count,
		       COUNT(*) FILTER (WHERE event_type_name LIKE 'Access granted%') AS granted,
		       COUNT(*) FILTER (WHERE event_type_name LIKE 'Access denied%') AS denied
		FROM vw_event_log
		WHERE event_time >= $1
		GROUP BY access_point_name
		ORDER BY event_count DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top access points: %w", err)
	}
	defer rows.Close()

	points := []AccessPointTraffic{}
	for rows.Next() {
		var p AccessPointTraffic
		if err := rows.Scan(&p.AccessPointName, &p.EventCount, &p.Granted, &p.Denied); err != nil {
			return nil, fmt.Errorf("scanning access point traffic: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading access point rows: %w", err)
	}
	return points, nil
}

// SecurityAlerts returns recent denied-access and door-alarm events,
// newest first.
func (s *Service) SecurityAlerts(ctx context.Context, since time.Time, limit int) ([]Alert, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_time, event_type_name,
		       COALESCE(access_point_name, ''), COALESCE(entrance_name, ''),
		       COALESCE(carrier_full_name, ''), COALESCE(identifier, ''),
		       CASE
		           WHEN event_type_name = 'Tailgating'       THEN 'Tailgating détecté'
		           WHEN event_type_name = 'Door forced open' THEN 'Porte forcée'
		           WHEN event_type_name = 'Door held open'   THEN 'Porte maintenue ouverte'
		           WHEN event_type_name LIKE 'Access denied%' THEN 'Accès refusé — ' || event_type_name
		           ELSE event_type_name
		       END AS description
		FROM vw_event_log
		WHERE event_time >= $1
		  AND (
		      event_type_name LIKE 'Access denied%'
		      OR event_type_name IN ('Door forced open', 'Door held open', 'Tailgating')
		  )
		ORDER BY event_time DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("querying security alerts: %w", err)
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		var a Alert
		err := rows.Scan(&a.Timestamp, &a.EventTypeName, &a.AccessPointName,
			&a.EntranceName, &a.CarrierName, &a.Identifier, &a.Description)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading alert rows: %w", err)
	}
	return alerts, nil
}
