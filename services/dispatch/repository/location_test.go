package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/models"
)

func TestStoreAndGetSample(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	missing, err := repo.GetLastSample(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	sample := &models.LocationSample{
		UserID:     "driver-1",
		UserType:   models.UserTypeDriver,
		Latitude:   -6.175392,
		Longitude:  106.827153,
		AccuracyM:  12.5,
		Heading:    270,
		SpeedKph:   42.3,
		CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, sample))

	got, err := repo.GetLastSample(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.InDelta(t, sample.Latitude, got.Latitude, 1e-9)
	assert.InDelta(t, sample.Longitude, got.Longitude, 1e-9)
	assert.InDelta(t, sample.SpeedKph, got.SpeedKph, 1e-9)
	assert.Equal(t, sample.CapturedAt.Unix(), got.CapturedAt.Unix())
}

func TestStoreSample_LatestWins(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	first := &models.LocationSample{
		UserID: "driver-1", UserType: models.UserTypeDriver,
		Latitude: -6.1, Longitude: 106.8, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, first))

	second := &models.LocationSample{
		UserID: "driver-1", UserType: models.UserTypeDriver,
		Latitude: -6.2, Longitude: 106.9, CapturedAt: time.Now().Add(time.Minute),
	}
	assert.NoError(t, repo.StoreSample(ctx, second))

	got, err := repo.GetLastSample(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.InDelta(t, -6.2, got.Latitude, 1e-9)
}

func TestStoreSample_DriverFeedsGeoIndex(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	driver := &models.LocationSample{
		UserID: "driver-1", UserType: models.UserTypeDriver,
		Latitude: -6.175392, Longitude: 106.827153, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, driver))

	customer := &models.LocationSample{
		UserID: "customer-1", UserType: models.UserTypeCustomer,
		Latitude: -6.185392, Longitude: 106.837153, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, customer))

	members, err := redisClient.ZRange(ctx, constants.KeyDriverGeo, 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"driver-1"}, members)
}

func TestActiveTripBinding(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	tripID, err := repo.GetActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Empty(t, tripID)

	assert.NoError(t, repo.BindActiveTrip(ctx, models.UserTypeDriver, "driver-1", "trip-1"))

	tripID, err = repo.GetActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-1", tripID)

	// Rebind overwrites
	assert.NoError(t, repo.BindActiveTrip(ctx, models.UserTypeDriver, "driver-1", "trip-2"))
	tripID, err = repo.GetActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Equal(t, "trip-2", tripID)

	assert.NoError(t, repo.UnbindActiveTrip(ctx, models.UserTypeDriver, "driver-1"))
	tripID, err = repo.GetActiveTrip(ctx, models.UserTypeDriver, "driver-1")
	assert.NoError(t, err)
	assert.Empty(t, tripID)
}

func TestTripParties(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	missing, err := repo.GetTripParties(ctx, "trip-1")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	parties := models.TripParties{TripID: "trip-1", DriverID: "driver-1", CustomerID: "customer-1"}
	assert.NoError(t, repo.StoreTripParties(ctx, parties))

	got, err := repo.GetTripParties(ctx, "trip-1")
	assert.NoError(t, err)
	assert.Equal(t, parties, *got)

	assert.NoError(t, repo.RemoveTripParties(ctx, "trip-1"))
	missing, err = repo.GetTripParties(ctx, "trip-1")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNearbyDrivers(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, 24*time.Hour)
	ctx := context.Background()

	near := &models.LocationSample{
		UserID: "driver-near", UserType: models.UserTypeDriver,
		Latitude: -6.175392, Longitude: 106.827153, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, near))

	// Roughly 100 km away, outside any sane pickup radius
	far := &models.LocationSample{
		UserID: "driver-far", UserType: models.UserTypeDriver,
		Latitude: -7.0, Longitude: 107.5, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, far))

	origin := models.GeoLocation{Latitude: -6.18, Longitude: 106.83}
	drivers, err := repo.NearbyDrivers(ctx, origin, 5)
	assert.NoError(t, err)
	assert.Len(t, drivers, 1)
	assert.Equal(t, "driver-near", drivers[0].DriverID)
	assert.InDelta(t, near.Latitude, drivers[0].Latitude, 1e-4)
	assert.InDelta(t, near.Longitude, drivers[0].Longitude, 1e-4)
	assert.Greater(t, drivers[0].DistanceKm, 0.0)
	assert.Less(t, drivers[0].DistanceKm, 5.0)

	// A radius wide enough to catch both returns nearest first
	drivers, err = repo.NearbyDrivers(ctx, origin, 200)
	assert.NoError(t, err)
	assert.Len(t, drivers, 2)
	assert.Equal(t, "driver-near", drivers[0].DriverID)
	assert.Equal(t, "driver-far", drivers[1].DriverID)
}

func TestCleanupGeoIndex(t *testing.T) {
	redisClient, mr := setupMockRedis(t)
	defer mr.Close()

	repo := NewLocationRepository(redisClient, time.Hour)
	ctx := context.Background()

	live := &models.LocationSample{
		UserID: "driver-live", UserType: models.UserTypeDriver,
		Latitude: -6.175392, Longitude: 106.827153, CapturedAt: time.Now(),
	}
	assert.NoError(t, repo.StoreSample(ctx, live))

	// Geo member whose location hash is gone
	assert.NoError(t, redisClient.GeoAdd(ctx, constants.KeyDriverGeo, 106.9, -6.2, "driver-ghost"))

	removed, err := repo.CleanupGeoIndex(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	members, err := redisClient.ZRange(ctx, constants.KeyDriverGeo, 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, []string{"driver-live"}, members)
}
