package dispatch

import (
	"context"
	"time"

	"github.com/openride/dispatch/internal/pkg/models"
)

// DriverStatusRepo defines data access for driver liveness and availability
type DriverStatusRepo interface {
	GetStatus(ctx context.Context, driverID string) (*models.DriverStatusRecord, error)
	RecordHeartbeat(ctx context.Context, driverID string, appState models.AppState, at time.Time) (*models.DriverStatusRecord, error)
	RecordCustomerPresence(ctx context.Context, customerID string, at time.Time) error
	SetAvailability(ctx context.Context, driverID string, available bool) (*models.DriverStatusRecord, error)
	MarkOnTrip(ctx context.Context, driverID, tripID string) error
	ClearTrip(ctx context.Context, driverID string) (*models.DriverStatusRecord, error)
	ForceOffline(ctx context.Context, driverID string) error
	DemoteToBusy(ctx context.Context, driverID string) error
	ConnectedDriverIDs(ctx context.Context) ([]string, error)
	Summary(ctx context.Context) (models.StatusSummary, error)
}

// TripQueueRepo defines data access for per-driver trip offer queues
type TripQueueRepo interface {
	Enqueue(ctx context.Context, driverID string, item models.QueueItem) error
	PeekNext(ctx context.Context, driverID string) (*models.QueueItem, error)
	BeginProcessing(ctx context.Context, driverID string, at time.Time) (*models.QueueItem, error)
	GetProcessing(ctx context.Context, driverID string) (*models.ProcessingSlot, error)
	ResolveProcessing(ctx context.Context, driverID string) (*models.ProcessingSlot, error)
	QueueSnapshot(ctx context.Context, driverID string) (*models.DriverQueueSnapshot, error)
	DriverIDsWithQueueData(ctx context.Context) ([]string, error)
	RemoveOrphanedItems(ctx context.Context, driverID string) (int, error)
}

// LocationRepo defines data access for location samples and the
// active-trip index
type LocationRepo interface {
	StoreSample(ctx context.Context, sample *models.LocationSample) error
	GetLastSample(ctx context.Context, userType, userID string) (*models.LocationSample, error)
	BindActiveTrip(ctx context.Context, userType, userID, tripID string) error
	UnbindActiveTrip(ctx context.Context, userType, userID string) error
	GetActiveTrip(ctx context.Context, userType, userID string) (string, error)
	NearbyDrivers(ctx context.Context, origin models.GeoLocation, radiusKm float64) ([]models.NearbyDriver, error)
	StoreTripParties(ctx context.Context, parties models.TripParties) error
	GetTripParties(ctx context.Context, tripID string) (*models.TripParties, error)
	RemoveTripParties(ctx context.Context, tripID string) error
	CleanupGeoIndex(ctx context.Context) (int, error)
}
