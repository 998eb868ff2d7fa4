package dispatch

import (
	"context"

	"github.com/openride/dispatch/internal/pkg/models"
)

// DispatchUC defines the dispatch coordination business logic
type DispatchUC interface {
	// Liveness and availability
	Heartbeat(ctx context.Context, req *models.HeartbeatRequest) (*models.HeartbeatResponse, error)
	SetDriverAvailability(ctx context.Context, driverID string, available bool) error

	// Offer queue
	EnqueueOffer(ctx context.Context, offer *models.TripOfferEvent) error
	NextOffer(ctx context.Context, driverID string) (*models.QueueItem, error)
	ResolveOffer(ctx context.Context, driverID string, outcome models.OfferOutcome) error
	CompleteTrip(ctx context.Context, tripID string) error

	// Location relay and active-trip index
	UpdateLocation(ctx context.Context, userType, userID string, sample *models.LocationSample) (string, error)
	GetUserActiveTrip(ctx context.Context, userType, userID string) (string, error)

	// Administrative introspection
	ListQueuedDrivers(ctx context.Context) ([]string, error)
	QueueOverview(ctx context.Context) (*models.QueueOverview, error)
	NearbyDrivers(ctx context.Context, origin models.GeoLocation, radiusKm float64) ([]models.NearbyDriver, error)

	// Reaper sweeps
	RunFastSweep(ctx context.Context) (*models.CleanupResult, error)
	RunMediumSweep(ctx context.Context) (*models.CleanupResult, error)
	RunDailySweep(ctx context.Context) error
}
