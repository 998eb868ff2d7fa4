package dispatch

import "errors"

// Dispatch coordination errors. Concurrent-access outcomes that are
// expected (occupied processing slot, empty queue) are represented as
// empty results, not errors.
var (
	ErrDriverNotFound     = errors.New("driver not found")
	ErrDriverOffline      = errors.New("driver is offline")
	ErrDriverOnTrip       = errors.New("driver is on a trip")
	ErrDriverNotAvailable = errors.New("driver is not available for offers")
	ErrTripAlreadyQueued  = errors.New("trip already queued for driver")
	ErrNoOfferInFlight    = errors.New("no offer awaiting resolution")
	ErrTripNotFound       = errors.New("trip not found")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidUserType    = errors.New("invalid user type")
	ErrInvalidOutcome     = errors.New("invalid offer outcome")
)
