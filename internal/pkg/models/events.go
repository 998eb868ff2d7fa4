package models

import "time"

// TripOfferEvent is the fanned-out offer from the external matcher
type TripOfferEvent struct {
	TripID     string      `json:"trip_id"`
	DriverID   string      `json:"driver_id"`
	CustomerID string      `json:"customer_id"`
	Priority   int         `json:"priority"`
	Pickup     GeoLocation `json:"pickup"`
	Timestamp  time.Time   `json:"timestamp"`
}

// DriverOfflineEvent is published when the reaper forces a driver OFFLINE
type DriverOfflineEvent struct {
	DriverID  string    `json:"driver_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// OfferResolvedEvent is published when a processing slot is resolved
type OfferResolvedEvent struct {
	TripID    string       `json:"trip_id"`
	DriverID  string       `json:"driver_id"`
	Outcome   OfferOutcome `json:"outcome"`
	Timestamp time.Time    `json:"timestamp"`
}

// LocationEvent carries a location sample bound to an active trip
type LocationEvent struct {
	TripID string         `json:"trip_id"`
	Sample LocationSample `json:"sample"`
}
