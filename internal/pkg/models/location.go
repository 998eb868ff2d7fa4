package models

import "time"

// GeoLocation represents a geographic location
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationSample is the latest-wins position report for a user.
// Only the most recent sample is retained.
type LocationSample struct {
	UserID     string    `json:"user_id"`
	UserType   string    `json:"user_type"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	Heading    float64   `json:"heading,omitempty"`
	SpeedKph   float64   `json:"speed_kph,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// TripParties maps an active trip to its driver and customer
type TripParties struct {
	TripID     string `json:"trip_id"`
	DriverID   string `json:"driver_id"`
	CustomerID string `json:"customer_id"`
}

// LocationUpdateResponse is returned by location ingestion; TripID is set
// when the user is bound to an active trip.
type LocationUpdateResponse struct {
	TripID string `json:"trip_id,omitempty"`
}

// NearbyDriver is a geo-index hit for a proximity lookup, ordered by
// distance from the query origin.
type NearbyDriver struct {
	DriverID   string  `json:"driver_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}
