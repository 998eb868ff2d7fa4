package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

func connectAvailableDriver(t *testing.T, env *testEnv, driverID string) {
	ctx := context.Background()
	_, err := env.uc.Heartbeat(ctx, &models.HeartbeatRequest{
		UserID:   driverID,
		UserType: models.UserTypeDriver,
		AppState: models.AppStateForeground,
	})
	assert.NoError(t, err)
	assert.NoError(t, env.uc.SetDriverAvailability(ctx, driverID, true))
}

func offer(tripID, driverID, customerID string, priority int, at time.Time) *models.TripOfferEvent {
	return &models.TripOfferEvent{
		TripID:     tripID,
		DriverID:   driverID,
		CustomerID: customerID,
		Priority:   priority,
		Pickup:     models.GeoLocation{Latitude: -6.175392, Longitude: 106.827153},
		Timestamp:  at,
	}
}

func TestEnqueueOffer_RequiresAvailableDriver(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()

	err := env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now()))
	assert.ErrorIs(t, err, dispatch.ErrDriverNotAvailable)

	// CONNECTED but not AVAILABLE is still refused
	_, err = env.uc.Heartbeat(ctx, &models.HeartbeatRequest{
		UserID: "driver-1", UserType: models.UserTypeDriver,
	})
	assert.NoError(t, err)
	err = env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now()))
	assert.ErrorIs(t, err, dispatch.ErrDriverNotAvailable)
}

func TestEnqueueOffer_NotifiesDriverAndToleratesDuplicates(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now())))

	notes := env.gw.notificationsFor("driver-1")
	assert.Len(t, notes, 1)
	assert.Equal(t, constants.EventTripOffer, notes[0].event)

	// Matcher redelivery is swallowed, no second push
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now())))
	assert.Len(t, env.gw.notificationsFor("driver-1"), 1)
}

func TestOfferLifecycle_AcceptAssignsTrip(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	base := time.Now()
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-low", "driver-1", "customer-1", 1, base)))
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-high", "driver-1", "customer-2", 0, base.Add(time.Second))))

	// Priority 0 dispatches before the earlier priority 1 offer
	item, err := env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-high", item.TripID)

	// No second offer while one is in flight
	item, err = env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, item)

	assert.NoError(t, env.uc.ResolveOffer(ctx, "driver-1", models.OfferAccepted))

	record, err := env.statusRepo.GetStatus(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, models.DriverStatusOnTrip, record.Status)
	assert.Equal(t, "trip-high", record.CurrentTripID)

	tripID, err := env.uc.GetUserActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-high", tripID)
	tripID, err = env.uc.GetUserActiveTrip(ctx, models.UserTypeCustomer, "customer-2")
	assert.NoError(t, err)
	assert.Equal(t, "trip-high", tripID)

	assert.Len(t, env.gw.resolved, 1)
	assert.Equal(t, models.OfferAccepted, env.gw.resolved[0].Outcome)

	// The winning customer gets the resolution pushed over websocket
	customerNotes := env.gw.notificationsFor("customer-2")
	assert.Len(t, customerNotes, 1)
	assert.Equal(t, constants.EventOfferResolved, customerNotes[0].event)

	// The queued lower-priority offer is still there for later
	item, err = env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-low", item.TripID)
}

func TestResolveOffer_RejectClearsSlotOnly(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now())))

	_, err := env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.NoError(t, env.uc.ResolveOffer(ctx, "driver-1", models.OfferRejected))

	record, err := env.statusRepo.GetStatus(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, models.DriverStatusAvailable, record.Status)

	slot, err := env.queueRepo.GetProcessing(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, slot)
}

func TestResolveOffer_Validation(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	err := env.uc.ResolveOffer(ctx, "driver-1", models.OfferOutcome("maybe"))
	assert.ErrorIs(t, err, dispatch.ErrInvalidOutcome)

	err = env.uc.ResolveOffer(ctx, "driver-1", models.OfferAccepted)
	assert.ErrorIs(t, err, dispatch.ErrNoOfferInFlight)
}

func TestNextOffer_OfflineDriver(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()

	_, err := env.uc.NextOffer(ctx, "driver-1")
	assert.ErrorIs(t, err, dispatch.ErrDriverOffline)
}

func TestCompleteTrip(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now())))
	_, err := env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.NoError(t, env.uc.ResolveOffer(ctx, "driver-1", models.OfferAccepted))

	assert.NoError(t, env.uc.CompleteTrip(ctx, "trip-1"))

	record, err := env.statusRepo.GetStatus(ctx, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, models.DriverStatusAvailable, record.Status)
	assert.Empty(t, record.CurrentTripID)

	tripID, err := env.uc.GetUserActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Empty(t, tripID)
	tripID, err = env.uc.GetUserActiveTrip(ctx, models.UserTypeCustomer, "customer-1")
	assert.NoError(t, err)
	assert.Empty(t, tripID)

	assert.ErrorIs(t, env.uc.CompleteTrip(ctx, "trip-1"), dispatch.ErrTripNotFound)
}

func TestQueueOverview(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")
	connectAvailableDriver(t, env, "driver-2")

	base := time.Now()
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, base)))
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-2", "driver-1", "customer-2", 1, base.Add(time.Second))))
	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-3", "driver-2", "customer-3", 1, base)))

	_, err := env.uc.NextOffer(ctx, "driver-2")
	assert.NoError(t, err)

	overview, err := env.uc.QueueOverview(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, overview.TotalDrivers)
	assert.Equal(t, 2, overview.TotalQueuedTrips)
	assert.Equal(t, 1, overview.TotalProcessing)

	ids, err := env.uc.ListQueuedDrivers(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"driver-1", "driver-2"}, ids)
}
