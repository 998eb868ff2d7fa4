package constants

// WebSocket event types
const (
	// Common events
	EventError = "error"
	EventPing  = "ping"
	EventPong  = "pong"

	// Dispatch events
	EventTripOffer     = "trip_offer"
	EventOfferResolved = "offer_resolved"

	// Location events
	EventLocationUpdate = "location_update"
)
