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

func TestHeartbeat(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()

	resp, err := env.uc.Heartbeat(ctx, &models.HeartbeatRequest{
		UserID:   "driver-1",
		UserType: models.UserTypeDriver,
	})
	assert.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	assert.Equal(t, 30, resp.NextIntervalSec)

	// Customers only refresh presence, no state machine entry
	resp, err = env.uc.Heartbeat(ctx, &models.HeartbeatRequest{
		UserID:   "customer-1",
		UserType: models.UserTypeCustomer,
	})
	assert.NoError(t, err)
	assert.True(t, resp.Acknowledged)

	record, err := env.statusRepo.GetStatus(ctx, "customer-1")
	assert.NoError(t, err)
	assert.Nil(t, record)

	_, err = env.uc.Heartbeat(ctx, &models.HeartbeatRequest{
		UserID:   "x",
		UserType: "robot",
	})
	assert.ErrorIs(t, err, dispatch.ErrInvalidUserType)
}

func TestUpdateLocation_Validation(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()

	_, err := env.uc.UpdateLocation(ctx, "robot", "x", &models.LocationSample{})
	assert.ErrorIs(t, err, dispatch.ErrInvalidUserType)

	_, err = env.uc.UpdateLocation(ctx, models.UserTypeDriver, "driver-1", &models.LocationSample{
		Latitude:  -120,
		Longitude: 10,
	})
	assert.ErrorIs(t, err, dispatch.ErrInvalidCoordinates)
}

func TestUpdateLocation_NoActiveTrip(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()

	tripID, err := env.uc.UpdateLocation(ctx, models.UserTypeDriver, "driver-1", &models.LocationSample{
		Latitude:  -6.175392,
		Longitude: 106.827153,
	})
	assert.NoError(t, err)
	assert.Empty(t, tripID)
	assert.Empty(t, env.gw.locations)
}

func TestUpdateLocation_RelaysToCounterpart(t *testing.T) {
	env := setupUsecase(t)
	ctx := context.Background()
	connectAvailableDriver(t, env, "driver-1")

	assert.NoError(t, env.uc.EnqueueOffer(ctx, offer("trip-1", "driver-1", "customer-1", 1, time.Now())))
	_, err := env.uc.NextOffer(ctx, "driver-1")
	assert.NoError(t, err)
	assert.NoError(t, env.uc.ResolveOffer(ctx, "driver-1", models.OfferAccepted))

	tripID, err := env.uc.UpdateLocation(ctx, models.UserTypeDriver, "driver-1", &models.LocationSample{
		Latitude:  -6.175392,
		Longitude: 106.827153,
	})
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", tripID)

	// Customer got the driver's position in real time
	notes := env.gw.notificationsFor("customer-1")
	assert.Len(t, notes, 1)
	assert.Equal(t, constants.EventLocationUpdate, notes[0].event)

	assert.Len(t, env.gw.locations, 1)
	assert.Equal(t, "trip-1", env.gw.locations[0].TripID)

	// And symmetrically back to the driver
	tripID, err = env.uc.UpdateLocation(ctx, models.UserTypeCustomer, "customer-1", &models.LocationSample{
		Latitude:  -6.185392,
		Longitude: 106.837153,
	})
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", tripID)

	driverNotes := env.gw.notificationsFor("driver-1")
	var locationPushes int
	for _, n := range driverNotes {
		if n.event == constants.EventLocationUpdate {
			locationPushes++
		}
	}
	assert.Equal(t, 1, locationPushes)
}
