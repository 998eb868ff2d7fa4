package models

import "time"

// QueueItem is a pending trip offer in a driver's queue.
// Lower priority dispatches first; ties break by enqueue time.
type QueueItem struct {
	TripID     string      `json:"trip_id"`
	CustomerID string      `json:"customer_id"`
	Priority   int         `json:"priority"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
	Pickup     GeoLocation `json:"pickup"`
}

// OfferOutcome is the resolution of an in-flight offer
type OfferOutcome string

const (
	OfferAccepted OfferOutcome = "accepted"
	OfferRejected OfferOutcome = "rejected"
	OfferTimedOut OfferOutcome = "timeout"
)

// ProcessingSlot holds the single offer a driver is currently evaluating
type ProcessingSlot struct {
	TripID    string     `json:"trip_id"`
	StartedAt time.Time  `json:"started_at"`
	Item      *QueueItem `json:"item,omitempty"`
}

// ResolveOfferRequest resolves a driver's processing slot
type ResolveOfferRequest struct {
	Outcome OfferOutcome `json:"outcome"`
}

// DriverQueueSnapshot is a read-only view of one driver's queue state
type DriverQueueSnapshot struct {
	DriverID   string          `json:"driver_id"`
	Items      []QueueItem     `json:"items"`
	Processing *ProcessingSlot `json:"processing,omitempty"`
}

// QueueOverview is the admin view across all drivers holding queue data
type QueueOverview struct {
	Drivers          []DriverQueueSnapshot `json:"drivers"`
	TotalDrivers     int                   `json:"total_drivers"`
	TotalQueuedTrips int                   `json:"total_queued_trips"`
	TotalProcessing  int                   `json:"total_processing"`
}
