package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
	"github.com/openride/dispatch/services/dispatch"
)

// activeTripTTL bounds how long a trip binding survives without an
// explicit unbind. Matches the longest plausible trip by a wide margin.
const activeTripTTL = 24 * time.Hour

type locationRepo struct {
	redisClient *database.RedisClient
	locationTTL time.Duration
}

// NewLocationRepository creates a Redis-backed location repository.
// Samples expire after locationTTL; latest sample wins.
func NewLocationRepository(redisClient *database.RedisClient, locationTTL time.Duration) dispatch.LocationRepo {
	return &locationRepo{
		redisClient: redisClient,
		locationTTL: locationTTL,
	}
}

func locationKey(userType, userID string) string {
	return fmt.Sprintf(constants.KeyUserLocation, userType, userID)
}

func activeTripKey(userType, userID string) string {
	return fmt.Sprintf(constants.KeyActiveTrip, userType, userID)
}

func partiesKey(tripID string) string {
	return fmt.Sprintf(constants.KeyTripParties, tripID)
}

// StoreSample overwrites the user's last-known position. Driver samples
// also refresh the geo index used for proximity lookups.
func (r *locationRepo) StoreSample(ctx context.Context, sample *models.LocationSample) error {
	key := locationKey(sample.UserType, sample.UserID)
	hash := utils.EncodeLocation(models.GeoLocation{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
	}, utils.GeohashPrecision)

	values := map[string]interface{}{
		constants.FieldLatitude:  strconv.FormatFloat(sample.Latitude, 'f', -1, 64),
		constants.FieldLongitude: strconv.FormatFloat(sample.Longitude, 'f', -1, 64),
		constants.FieldGeohash:   hash,
		constants.FieldAccuracy:  strconv.FormatFloat(sample.AccuracyM, 'f', -1, 64),
		constants.FieldHeading:   strconv.FormatFloat(sample.Heading, 'f', -1, 64),
		constants.FieldSpeed:     strconv.FormatFloat(sample.SpeedKph, 'f', -1, 64),
		constants.FieldTimestamp: strconv.FormatInt(sample.CapturedAt.Unix(), 10),
	}
	if err := r.redisClient.HSet(ctx, key, values); err != nil {
		return fmt.Errorf("failed to store location sample: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, r.locationTTL); err != nil {
		return fmt.Errorf("failed to set location TTL: %w", err)
	}

	if sample.UserType == models.UserTypeDriver {
		if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo, sample.Longitude, sample.Latitude, sample.UserID); err != nil {
			return fmt.Errorf("failed to update driver geo index: %w", err)
		}
	}
	return nil
}

// GetLastSample returns the last stored position, or nil when none exists
func (r *locationRepo) GetLastSample(ctx context.Context, userType, userID string) (*models.LocationSample, error) {
	values, err := r.redisClient.HGetAll(ctx, locationKey(userType, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get location sample: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	sample := &models.LocationSample{
		UserID:   userID,
		UserType: userType,
	}
	sample.Latitude, _ = strconv.ParseFloat(values[constants.FieldLatitude], 64)
	sample.Longitude, _ = strconv.ParseFloat(values[constants.FieldLongitude], 64)
	sample.AccuracyM, _ = strconv.ParseFloat(values[constants.FieldAccuracy], 64)
	sample.Heading, _ = strconv.ParseFloat(values[constants.FieldHeading], 64)
	sample.SpeedKph, _ = strconv.ParseFloat(values[constants.FieldSpeed], 64)
	if ts, err := strconv.ParseInt(values[constants.FieldTimestamp], 10, 64); err == nil && ts > 0 {
		sample.CapturedAt = time.Unix(ts, 0)
	}
	return sample, nil
}

// BindActiveTrip points a user at their current trip, replacing any
// previous binding.
func (r *locationRepo) BindActiveTrip(ctx context.Context, userType, userID, tripID string) error {
	if err := r.redisClient.Set(ctx, activeTripKey(userType, userID), tripID, activeTripTTL); err != nil {
		return fmt.Errorf("failed to bind active trip: %w", err)
	}
	return nil
}

// UnbindActiveTrip removes the user's trip binding; no-op when unbound
func (r *locationRepo) UnbindActiveTrip(ctx context.Context, userType, userID string) error {
	if _, err := r.redisClient.Delete(ctx, activeTripKey(userType, userID)); err != nil {
		return fmt.Errorf("failed to unbind active trip: %w", err)
	}
	return nil
}

// GetActiveTrip returns the bound trip ID, or empty when unbound
func (r *locationRepo) GetActiveTrip(ctx context.Context, userType, userID string) (string, error) {
	tripID, err := r.redisClient.Get(ctx, activeTripKey(userType, userID))
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get active trip: %w", err)
	}
	return tripID, nil
}

// NearbyDrivers queries the geo index for drivers within radiusKm of
// origin, nearest first. Hits may be stale until the daily sweep prunes
// drivers whose location sample has expired.
func (r *locationRepo) NearbyDrivers(ctx context.Context, origin models.GeoLocation, radiusKm float64) ([]models.NearbyDriver, error) {
	hits, err := r.redisClient.GeoRadius(ctx, constants.KeyDriverGeo, origin.Longitude, origin.Latitude, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to query driver geo index: %w", err)
	}

	drivers := make([]models.NearbyDriver, 0, len(hits))
	for _, hit := range hits {
		drivers = append(drivers, models.NearbyDriver{
			DriverID:   hit.Name,
			Latitude:   hit.Latitude,
			Longitude:  hit.Longitude,
			DistanceKm: hit.Dist,
		})
	}
	return drivers, nil
}

// StoreTripParties records which driver and customer share a trip
func (r *locationRepo) StoreTripParties(ctx context.Context, parties models.TripParties) error {
	key := partiesKey(parties.TripID)
	values := map[string]interface{}{
		constants.FieldDriverID:   parties.DriverID,
		constants.FieldCustomerID: parties.CustomerID,
	}
	if err := r.redisClient.HSet(ctx, key, values); err != nil {
		return fmt.Errorf("failed to store trip parties: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, activeTripTTL); err != nil {
		return fmt.Errorf("failed to set trip parties TTL: %w", err)
	}
	return nil
}

// GetTripParties returns the trip's participants, or nil when unknown
func (r *locationRepo) GetTripParties(ctx context.Context, tripID string) (*models.TripParties, error) {
	values, err := r.redisClient.HGetAll(ctx, partiesKey(tripID))
	if err != nil {
		return nil, fmt.Errorf("failed to get trip parties: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &models.TripParties{
		TripID:     tripID,
		DriverID:   values[constants.FieldDriverID],
		CustomerID: values[constants.FieldCustomerID],
	}, nil
}

// RemoveTripParties drops the trip's participant record
func (r *locationRepo) RemoveTripParties(ctx context.Context, tripID string) error {
	if _, err := r.redisClient.Delete(ctx, partiesKey(tripID)); err != nil {
		return fmt.Errorf("failed to remove trip parties: %w", err)
	}
	return nil
}

// CleanupGeoIndex evicts geo-index members whose location sample has
// expired. GEO sets have no per-member TTL, so the daily sweep prunes.
func (r *locationRepo) CleanupGeoIndex(ctx context.Context) (int, error) {
	members, err := r.redisClient.ZRange(ctx, constants.KeyDriverGeo, 0, -1)
	if err != nil {
		return 0, fmt.Errorf("failed to list geo index members: %w", err)
	}

	removed := 0
	for _, driverID := range members {
		exists, err := r.redisClient.Exists(ctx, locationKey(models.UserTypeDriver, driverID))
		if err != nil {
			return removed, fmt.Errorf("failed to check location sample: %w", err)
		}
		if !exists {
			if err := r.redisClient.ZRem(ctx, constants.KeyDriverGeo, driverID); err != nil {
				return removed, fmt.Errorf("failed to prune geo index: %w", err)
			}
			removed++
		}
	}
	return removed, nil
}
