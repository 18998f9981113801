package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

const findEventResponseXML = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <EventSearchResponse>
      <EventInfo>
        <Id>101</Id>
        <EventTypeId>7</EventTypeId>
        <EventTypeName>Access granted</EventTypeName>
        <DateTime>2026-08-29T10:00:00</DateTime>
        <HostName>aepu-01</HostName>
        <AccesspointId>3</AccesspointId>
        <AccesspointName>Main Entrance</AccesspointName>
        <CarrierId>42</CarrierId>
        <CarrierFullName>Jane Martin</CarrierFullName>
        <Identifier>0012345</Identifier>
      </EventInfo>
      <EventInfo>
        <Id>102</Id>
        <EventTypeName>Door forced open</EventTypeName>
        <DateTime>2026-08-29T10:00:05Z</DateTime>
        <AccesspointName>Server Room</AccesspointName>
      </EventInfo>
    </EventSearchResponse>
  </soapenv:Body>
</soapenv:Envelope>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSOAPSource_FetchEventsSince(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		io.WriteString(w, findEventResponseXML)
	}))
	defer server.Close()

	src := NewSOAP(SOAPConfig{EndpointURL: server.URL, Username: "ws", Password: "pw"}, testLogger())

	since := time.Date(2026, 8, 29, 9, 55, 0, 0, time.UTC)
	events, err := src.FetchEventsSince(context.Background(), since, 20)
	if err != nil {
		t.Fatalf("FetchEventsSince failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != 101 || events[0].EventTypeName != "Access granted" {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[0].CarrierName != "Jane Martin" {
		t.Errorf("CarrierName: got %q, want %q", events[0].CarrierName, "Jane Martin")
	}
	want := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if !events[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp: got %v, want %v", events[0].Timestamp, want)
	}
	if !events[1].Timestamp.Equal(want.Add(5 * time.Second)) {
		t.Errorf("zoned Timestamp: got %v", events[1].Timestamp)
	}

	// The request envelope must carry the search window and record cap.
	for _, fragment := range []string{"EventSearch", "DateTimeRange", "2026-08-29T09:55:00Z", "<NrOfRecords>20</NrOfRecords>"} {
		if !strings.Contains(gotBody, fragment) {
			t.Errorf("request body missing %q:\n%s", fragment, gotBody)
		}
	}
}

func TestSOAPSource_MalformedTimestampYieldsZeroTime(t *testing.T) {
	const response = `<?xml version="1.0"?>
<Envelope><Body><EventSearchResponse>
  <EventInfo><Id>7</Id><EventTypeName>Access denied</EventTypeName><DateTime>not-a-time</DateTime></EventInfo>
</EventSearchResponse></Body></Envelope>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, response)
	}))
	defer server.Close()

	src := NewSOAP(SOAPConfig{EndpointURL: server.URL}, testLogger())
	events, err := src.FetchEventsSince(context.Background(), time.Now(), 5)
	if err != nil {
		t.Fatalf("FetchEventsSince failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Timestamp.IsZero() {
		t.Errorf("expected zero timestamp for malformed DateTime, got %v", events[0].Timestamp)
	}
}

func TestSOAPSource_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewSOAP(SOAPConfig{EndpointURL: server.URL}, testLogger())
	_, err := src.FetchEventsSince(context.Background(), time.Now(), 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSOAPSource_UnreachableEndpointIsUnavailable(t *testing.T) {
	src := NewSOAP(SOAPConfig{EndpointURL: "http://127.0.0.1:1"}, testLogger())
	_, err := src.FetchEventsSince(context.Background(), time.Now(), 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSOAPSource_SlowEndpointIsTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	src := NewSOAP(SOAPConfig{EndpointURL: server.URL, Timeout: 50 * time.Millisecond}, testLogger())
	_, err := src.FetchEventsSince(context.Background(), time.Now(), 5)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSOAPSource_AccessPoints(t *testing.T) {
	const response = `<?xml version="1.0"?>
<Envelope><Body><AccessPointSearchResponse>
  <AccessPointInfo><Id>1</Id><Name>Main Entrance</Name><Type>Door</Type><EntranceId>10</EntranceId></AccessPointInfo>
  <AccessPointInfo><Id>2</Id><Name>Parking Gate</Name><Type>Gate</Type></AccessPointInfo>
</AccessPointSearchResponse></Body></Envelope>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, response)
	}))
	defer server.Close()

	src := NewSOAP(SOAPConfig{EndpointURL: server.URL}, testLogger())
	points, err := src.AccessPoints(context.Background())
	if err != nil {
		t.Fatalf("AccessPoints failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 access points, got %d", len(points))
	}
	if points[0].Name != "Main Entrance" || points[0].EntranceID == nil || *points[0].EntranceID != 10 {
		t.Errorf("unexpected first access point: %+v", points[0])
	}
}
