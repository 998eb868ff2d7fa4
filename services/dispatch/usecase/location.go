package usecase

import (
	"context"
	"time"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
	"github.com/openride/dispatch/services/dispatch"
)

// UpdateLocation ingests a position report, latest-wins. When the user
// is bound to an active trip the sample is relayed to the counterpart in
// real time; the returned trip ID is empty otherwise.
func (uc *DispatchUC) UpdateLocation(ctx context.Context, userType, userID string, sample *models.LocationSample) (string, error) {
	if userType != models.UserTypeDriver && userType != models.UserTypeCustomer {
		return "", dispatch.ErrInvalidUserType
	}
	if !utils.ValidateCoordinates(sample.Latitude, sample.Longitude) {
		return "", dispatch.ErrInvalidCoordinates
	}

	sample.UserID = userID
	sample.UserType = userType
	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = time.Now()
	}

	if err := uc.locationRepo.StoreSample(ctx, sample); err != nil {
		return "", err
	}

	tripID, err := uc.locationRepo.GetActiveTrip(ctx, userType, userID)
	if err != nil {
		return "", err
	}
	if tripID == "" {
		return "", nil
	}

	uc.relayToCounterpart(ctx, tripID, sample)
	return tripID, nil
}

// relayToCounterpart pushes the sample to the other trip party.
// Relay failures never fail the ingest; the next sample supersedes.
func (uc *DispatchUC) relayToCounterpart(ctx context.Context, tripID string, sample *models.LocationSample) {
	parties, err := uc.locationRepo.GetTripParties(ctx, tripID)
	if err != nil || parties == nil {
		logger.Warn("Location relay skipped, trip parties unavailable",
			logger.String("trip_id", tripID),
			logger.Err(err))
		return
	}

	counterpart := parties.CustomerID
	if sample.UserType == models.UserTypeCustomer {
		counterpart = parties.DriverID
	}

	event := models.LocationEvent{TripID: tripID, Sample: *sample}
	if counterpart != "" {
		uc.gateway.NotifyUser(counterpart, constants.EventLocationUpdate, event)
	}
	if err := uc.gateway.PublishLocationUpdate(ctx, &event); err != nil {
		logger.Warn("Failed to publish location update",
			logger.String("trip_id", tripID),
			logger.Err(err))
	}
}

// GetUserActiveTrip returns the trip the user is bound to, or empty
func (uc *DispatchUC) GetUserActiveTrip(ctx context.Context, userType, userID string) (string, error) {
	if userType != models.UserTypeDriver && userType != models.UserTypeCustomer {
		return "", dispatch.ErrInvalidUserType
	}
	return uc.locationRepo.GetActiveTrip(ctx, userType, userID)
}

// defaultNearbyRadiusKm applies when a proximity lookup omits the radius
const defaultNearbyRadiusKm = 5.0

// NearbyDrivers looks up drivers around origin in the geo index,
// nearest first
func (uc *DispatchUC) NearbyDrivers(ctx context.Context, origin models.GeoLocation, radiusKm float64) ([]models.NearbyDriver, error) {
	if !utils.ValidateCoordinates(origin.Latitude, origin.Longitude) {
		return nil, dispatch.ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	return uc.locationRepo.NearbyDrivers(ctx, origin, radiusKm)
}
