package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// EnqueueOffer places a matcher offer on the target driver's queue.
// Only AVAILABLE drivers receive offers; a duplicate trip for the same
// driver is dropped without error so the matcher can redeliver safely.
func (uc *DispatchUC) EnqueueOffer(ctx context.Context, offer *models.TripOfferEvent) error {
	record, err := uc.statusRepo.GetStatus(ctx, offer.DriverID)
	if err != nil {
		return err
	}
	if record == nil || record.Status != models.DriverStatusAvailable {
		return dispatch.ErrDriverNotAvailable
	}

	enqueuedAt := offer.Timestamp
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}
	item := models.QueueItem{
		TripID:     offer.TripID,
		CustomerID: offer.CustomerID,
		Priority:   offer.Priority,
		EnqueuedAt: enqueuedAt,
		Pickup:     offer.Pickup,
	}

	if err := uc.queueRepo.Enqueue(ctx, offer.DriverID, item); err != nil {
		if errors.Is(err, dispatch.ErrTripAlreadyQueued) {
			logger.Warn("Duplicate trip offer ignored",
				logger.String("trip_id", offer.TripID),
				logger.String("driver_id", offer.DriverID))
			return nil
		}
		return err
	}

	logger.Info("Trip offer enqueued",
		logger.String("trip_id", offer.TripID),
		logger.String("driver_id", offer.DriverID),
		logger.Int("priority", offer.Priority))

	uc.gateway.NotifyUser(offer.DriverID, constants.EventTripOffer, item)
	return nil
}

// NextOffer pops the driver's queue head into the processing slot.
// Returns nil when the queue is empty or an offer is already in flight.
func (uc *DispatchUC) NextOffer(ctx context.Context, driverID string) (*models.QueueItem, error) {
	record, err := uc.statusRepo.GetStatus(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Status == models.DriverStatusOffline {
		return nil, dispatch.ErrDriverOffline
	}

	item, err := uc.queueRepo.BeginProcessing(ctx, driverID, time.Now())
	if err != nil {
		return nil, err
	}
	if item != nil {
		logger.Info("Trip offer moved to processing",
			logger.String("trip_id", item.TripID),
			logger.String("driver_id", driverID))
	}
	return item, nil
}

// ResolveOffer settles the driver's in-flight offer. Acceptance assigns
// the trip under the trip's dispatch lock so two drivers can never both
// win it; rejection and timeout just clear the slot.
func (uc *DispatchUC) ResolveOffer(ctx context.Context, driverID string, outcome models.OfferOutcome) error {
	switch outcome {
	case models.OfferAccepted, models.OfferRejected, models.OfferTimedOut:
	default:
		return dispatch.ErrInvalidOutcome
	}

	slot, err := uc.queueRepo.GetProcessing(ctx, driverID)
	if err != nil {
		return err
	}
	if slot == nil {
		return dispatch.ErrNoOfferInFlight
	}

	if outcome == models.OfferAccepted {
		if err := uc.assignTrip(ctx, driverID, slot); err != nil {
			return err
		}
	}

	if _, err := uc.queueRepo.ResolveProcessing(ctx, driverID); err != nil {
		return err
	}

	logger.Info("Trip offer resolved",
		logger.String("trip_id", slot.TripID),
		logger.String("driver_id", driverID),
		logger.String("outcome", string(outcome)))

	event := &models.OfferResolvedEvent{
		TripID:    slot.TripID,
		DriverID:  driverID,
		Outcome:   outcome,
		Timestamp: time.Now(),
	}
	if err := uc.gateway.PublishOfferResolved(ctx, event); err != nil {
		logger.Warn("Failed to publish offer resolution",
			logger.String("trip_id", slot.TripID),
			logger.Err(err))
	}

	// The waiting customer learns the outcome in real time
	if slot.Item != nil && slot.Item.CustomerID != "" {
		uc.gateway.NotifyUser(slot.Item.CustomerID, constants.EventOfferResolved, event)
	}
	return nil
}

// assignTrip binds the trip to both parties under the trip lock
func (uc *DispatchUC) assignTrip(ctx context.Context, driverID string, slot *models.ProcessingSlot) error {
	lockKey := fmt.Sprintf(constants.KeyTripLock, slot.TripID)

	return uc.lockMgr.WithLock(ctx, lockKey, uc.lockOptions(), func(ctx context.Context) error {
		if err := uc.statusRepo.MarkOnTrip(ctx, driverID, slot.TripID); err != nil {
			return err
		}
		if err := uc.locationRepo.BindActiveTrip(ctx, models.UserTypeDriver, driverID, slot.TripID); err != nil {
			return err
		}

		customerID := ""
		if slot.Item != nil {
			customerID = slot.Item.CustomerID
		}
		if customerID != "" {
			if err := uc.locationRepo.BindActiveTrip(ctx, models.UserTypeCustomer, customerID, slot.TripID); err != nil {
				return err
			}
		}
		return uc.locationRepo.StoreTripParties(ctx, models.TripParties{
			TripID:     slot.TripID,
			DriverID:   driverID,
			CustomerID: customerID,
		})
	})
}

// CompleteTrip tears down the trip's bindings and restores the driver's
// pre-trip availability. Runs under the trip lock to serialize against a
// concurrent assignment of the same trip ID.
func (uc *DispatchUC) CompleteTrip(ctx context.Context, tripID string) error {
	parties, err := uc.locationRepo.GetTripParties(ctx, tripID)
	if err != nil {
		return err
	}
	if parties == nil {
		return dispatch.ErrTripNotFound
	}

	lockKey := fmt.Sprintf(constants.KeyTripLock, tripID)
	err = uc.lockMgr.WithLock(ctx, lockKey, uc.lockOptions(), func(ctx context.Context) error {
		if _, err := uc.statusRepo.ClearTrip(ctx, parties.DriverID); err != nil && !errors.Is(err, dispatch.ErrDriverNotFound) {
			return err
		}
		if err := uc.locationRepo.UnbindActiveTrip(ctx, models.UserTypeDriver, parties.DriverID); err != nil {
			return err
		}
		if parties.CustomerID != "" {
			if err := uc.locationRepo.UnbindActiveTrip(ctx, models.UserTypeCustomer, parties.CustomerID); err != nil {
				return err
			}
		}
		return uc.locationRepo.RemoveTripParties(ctx, tripID)
	})
	if err != nil {
		return err
	}

	logger.Info("Trip completed",
		logger.String("trip_id", tripID),
		logger.String("driver_id", parties.DriverID))
	return nil
}

// ListQueuedDrivers lists drivers with queued or in-flight offers
func (uc *DispatchUC) ListQueuedDrivers(ctx context.Context) ([]string, error) {
	return uc.queueRepo.DriverIDsWithQueueData(ctx)
}

// QueueOverview aggregates every driver's queue snapshot for operators
func (uc *DispatchUC) QueueOverview(ctx context.Context) (*models.QueueOverview, error) {
	driverIDs, err := uc.queueRepo.DriverIDsWithQueueData(ctx)
	if err != nil {
		return nil, err
	}

	overview := &models.QueueOverview{
		Drivers: make([]models.DriverQueueSnapshot, 0, len(driverIDs)),
	}
	for _, driverID := range driverIDs {
		snapshot, err := uc.queueRepo.QueueSnapshot(ctx, driverID)
		if err != nil {
			return nil, err
		}
		overview.Drivers = append(overview.Drivers, *snapshot)
		overview.TotalQueuedTrips += len(snapshot.Items)
		if snapshot.Processing != nil {
			overview.TotalProcessing++
		}
	}
	overview.TotalDrivers = len(overview.Drivers)
	return overview, nil
}
