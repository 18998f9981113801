package domain

import (
	"time"
)

// Category is the semantic classification of an access-control event,
// derived from the free-text event type name the AEOS server reports.
type Category string

const (
	CategoryGranted Category = "granted"
	CategoryDenied  Category = "denied"
	CategoryAlarm   Category = "alarm"
	CategoryOther   Category = "other"
)

// Event is a single access-control occurrence reported by AEOS.
// Field names follow the aeosws WSDL EventInfo schema; Category is
// computed locally and never stored back to the source.
type Event struct {
	ID              int64     `json:"id"`
	EventTypeID     *int64    `json:"event_type_id,omitempty"`
	EventTypeName   string    `json:"event_type_name"`
	Timestamp       time.Time `json:"timestamp"`
	HostName        string    `json:"host_name,omitempty"`
	AccessPointID   *int64    `json:"access_point_id,omitempty"`
	AccessPointName string    `json:"access_point_name,omitempty"`
	EntranceID      *int64    `json:"entrance_id,omitempty"`
	EntranceName    string    `json:"entrance_name,omitempty"`
	IdentifierID    *int64    `json:"identifier_id,omitempty"`
	Identifier      string    `json:"identifier,omitempty"`
	CarrierID       *int64    `json:"carrier_id,omitempty"`
	CarrierName     string    `json:"carrier_name,omitempty"`
	Category        Category  `json:"category"`
}

// AccessPoint is one entry of the AEOS access-point directory.
type AccessPoint struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	HostName    string `json:"host_name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	EntranceID  *int64 `json:"entrance_id,omitempty"`
}
