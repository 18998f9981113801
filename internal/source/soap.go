package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jmoreau/aeos-dashboard/internal/domain"
)

const soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// SOAPConfig holds the connection parameters for the aeosws endpoint.
type SOAPConfig struct {
	EndpointURL string
	Username    string
	Password    string
	Timeout     time.Duration
}

// SOAPSource implements Source against the AEOS aeosws web service
// using the findEvent and findAccessPoint operations. The underlying
// HTTP client is reused across poll cycles and holds no per-request
// state, so a failed call needs no explicit reconnect.
type SOAPSource struct {
	cfg    SOAPConfig
	client *http.Client
	logger *slog.Logger
}

// NewSOAP creates a SOAP-backed event source.
func NewSOAP(cfg SOAPConfig, logger *slog.Logger) *SOAPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	logger.Info("AEOS SOAP client initialized", "endpoint", cfg.EndpointURL)
	return &SOAPSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soapenv:Envelope"`
	NS      string   `xml:"xmlns:soapenv,attr"`
	Body    soapBody `xml:"soapenv:Body"`
}

type soapBody struct {
	Payload interface{}
}

type eventSearchRequest struct {
	XMLName         xml.Name        `xml:"EventSearch"`
	EventSearchInfo eventSearchInfo `xml:"EventSearchInfo"`
	SearchRange     searchRange     `xml:"SearchRange"`
}

type eventSearchInfo struct {
	DateTimeRange dateTimeRange `xml:"DateTimeRange"`
}

type dateTimeRange struct {
	From string `xml:"From"`
	To   string `xml:"To"`
}

type searchRange struct {
	StartRecord int `xml:"StartRecord"`
	NrOfRecords int `xml:"NrOfRecords"`
}

type eventSearchResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Events []eventInfo `xml:"EventInfo"`
		} `xml:"EventSearchResponse"`
	} `xml:"Body"`
}

// eventInfo mirrors the WSDL EventInfo element.
type eventInfo struct {
	ID              int64  `xml:"Id"`
	EventTypeID     *int64 `xml:"EventTypeId"`
	EventTypeName   string `xml:"EventTypeName"`
	DateTime        string `xml:"DateTime"`
	HostName        string `xml:"HostName"`
	AccesspointID   *int64 `xml:"AccesspointId"`
	AccesspointName string `xml:"AccesspointName"`
	EntranceID      *int64 `xml:"EntranceId"`
	EntranceName    string `xml:"EntranceName"`
	IdentifierID    *int64 `xml:"IdentifierId"`
	Identifier      string `xml:"Identifier"`
	CarrierID       *int64 `xml:"CarrierId"`
	CarrierFullName string `xml:"CarrierFullName"`
}

type accessPointSearchRequest struct {
	XMLName xml.Name `xml:"AccessPointSearch"`
	Info    struct {
		Name string `xml:"Name"`
	} `xml:"AccessPointSearchInfo"`
}

type accessPointSearchResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Points []accessPointInfo `xml:"AccessPointInfo"`
		} `xml:"AccessPointSearchResponse"`
	} `xml:"Body"`
}

type accessPointInfo struct {
	ID          int64  `xml:"Id"`
	Name        string `xml:"Name"`
	HostName    string `xml:"HostName"`
	Type        string `xml:"Type"`
	Description string `xml:"Description"`
	EntranceID  *int64 `xml:"EntranceId"`
}

// FetchEventsSince calls findEvent for the window [since, now].
func (s *SOAPSource) FetchEventsSince(ctx context.Context, since time.Time, limit int) ([]domain.Event, error) {
	req := eventSearchRequest{
		EventSearchInfo: eventSearchInfo{
			DateTimeRange: dateTimeRange{
				From: since.UTC().Format(time.RFC3339),
				To:   time.Now().UTC().Format(time.RFC3339),
			},
		},
		SearchRange: searchRange{StartRecord: 0, NrOfRecords: limit},
	}

	var resp eventSearchResponse
	if err := s.call(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("findEvent: %w", err)
	}

	events := make([]domain.Event, 0, len(resp.Body.Response.Events))
	for _, info := range resp.Body.Response.Events {
		events = append(events, domain.Event{
			ID:              info.ID,
			EventTypeID:     info.EventTypeID,
			EventTypeName:   info.EventTypeName,
			Timestamp:       parseSOAPTime(info.DateTime),
			HostName:        info.HostName,
			AccessPointID:   info.AccesspointID,
			AccessPointName: info.AccesspointName,
			EntranceID:      info.EntranceID,
			EntranceName:    info.EntranceName,
			IdentifierID:    info.IdentifierID,
			Identifier:      info.Identifier,
			CarrierID:       info.CarrierID,
			CarrierName:     info.CarrierFullName,
		})
	}
	return events, nil
}

// AccessPoints calls findAccessPoint with a wildcard name.
func (s *SOAPSource) AccessPoints(ctx context.Context) ([]domain.AccessPoint, error) {
	var req accessPointSearchRequest
	req.Info.Name = "*"

	var resp accessPointSearchResponse
	if err := s.call(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("findAccessPoint: %w", err)
	}

	points := make([]domain.AccessPoint, 0, len(resp.Body.Response.Points))
	for _, info := range resp.Body.Response.Points {
		points = append(points, domain.AccessPoint{
			ID:          info.ID,
			Name:        info.Name,
			HostName:    info.HostName,
			Type:        info.Type,
			Description: info.Description,
			EntranceID:  info.EntranceID,
		})
	}
	return points, nil
}

// Ping checks that the aeosws endpoint answers HTTP at all.
func (s *SOAPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.EndpointURL, nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	resp.Body.Close()
	return nil
}

// call posts one SOAP envelope and decodes the response envelope.
func (s *SOAPSource) call(ctx context.Context, payload, out interface{}) error {
	env := soapEnvelope{
		NS:   soapEnvelopeNS,
		Body: soapBody{Payload: payload},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return fmt.Errorf("encoding envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.EndpointURL, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	if s.cfg.Username != "" {
		req.SetBasicAuth(s.cfg.Username, s.cfg.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

// classifyTransportError maps network failures onto the source error
// taxonomy so the poller can treat them uniformly.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// parseSOAPTime parses an xsd:dateTime. AEOS emits both zoned and
// naive timestamps depending on server configuration; naive values are
// taken as UTC. Unparseable values yield the zero time, which the
// poller treats as a malformed event.
func parseSOAPTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
