package models

import "time"

// DriverStatus is the liveness/availability state of a driver
type DriverStatus string

const (
	DriverStatusOffline   DriverStatus = "OFFLINE"
	DriverStatusConnected DriverStatus = "CONNECTED"
	DriverStatusAvailable DriverStatus = "AVAILABLE"
	DriverStatusBusy      DriverStatus = "BUSY"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
)

// AppState is the foreground/background state reported by the client app
type AppState string

const (
	AppStateForeground AppState = "foreground"
	AppStateBackground AppState = "background"
)

// User types
const (
	UserTypeDriver   = "driver"
	UserTypeCustomer = "customer"
)

// DriverStatusRecord is the stored liveness and availability state of a driver.
// Status is ON_TRIP iff CurrentTripID is set.
type DriverStatusRecord struct {
	DriverID         string       `json:"driver_id"`
	Status           DriverStatus `json:"status"`
	LastHeartbeatAt  time.Time    `json:"last_heartbeat_at"`
	AppState         AppState     `json:"app_state"`
	AppStateSince    time.Time    `json:"app_state_since"`
	CurrentTripID    string       `json:"current_trip_id,omitempty"`
	PrevAvailability DriverStatus `json:"prev_availability,omitempty"`
}

// HeartbeatRequest represents a liveness signal from a connected client
type HeartbeatRequest struct {
	UserID   string   `json:"user_id"`
	UserType string   `json:"user_type"`
	AppState AppState `json:"app_state"`
}

// HeartbeatResponse acknowledges a heartbeat and suggests the next interval
type HeartbeatResponse struct {
	Acknowledged    bool `json:"acknowledged"`
	NextIntervalSec int  `json:"next_interval_sec"`
}

// AvailabilityRequest toggles a driver's availability beacon
type AvailabilityRequest struct {
	Available bool `json:"available"`
}

// StatusSummary aggregates driver counts per status
type StatusSummary struct {
	Connected int `json:"connected"`
	Available int `json:"available"`
	Busy      int `json:"busy"`
	OnTrip    int `json:"on_trip"`
}

// CleanupResult is returned by a reaper sweep
type CleanupResult struct {
	EvictedDriverIDs []string      `json:"evicted_driver_ids"`
	DemotedDriverIDs []string      `json:"demoted_driver_ids,omitempty"`
	Summary          StatusSummary `json:"summary"`
}
