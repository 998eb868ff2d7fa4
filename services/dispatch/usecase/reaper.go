package usecase

import (
	"context"
	"time"

	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
)

// RunFastSweep evicts drivers whose last heartbeat exceeds the timeout.
// Sweeps are idempotent: a re-run over the same state is a no-op.
func (uc *DispatchUC) RunFastSweep(ctx context.Context) (*models.CleanupResult, error) {
	now := time.Now()
	result := &models.CleanupResult{EvictedDriverIDs: []string{}}

	ids, err := uc.statusRepo.ConnectedDriverIDs(ctx)
	if err != nil {
		return nil, err
	}

	for _, driverID := range ids {
		record, err := uc.statusRepo.GetStatus(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		if now.Sub(record.LastHeartbeatAt) <= uc.heartbeatTimeout() {
			continue
		}

		if err := uc.statusRepo.ForceOffline(ctx, driverID); err != nil {
			return nil, err
		}
		result.EvictedDriverIDs = append(result.EvictedDriverIDs, driverID)

		event := &models.DriverOfflineEvent{
			DriverID:  driverID,
			Reason:    "heartbeat_timeout",
			Timestamp: now,
		}
		if err := uc.gateway.PublishDriverOffline(ctx, event); err != nil {
			logger.Warn("Failed to publish driver offline event",
				logger.String("driver_id", driverID),
				logger.Err(err))
		}

		logger.Info("Driver evicted for missed heartbeats",
			logger.String("driver_id", driverID),
			logger.Duration("silence", now.Sub(record.LastHeartbeatAt)))
	}

	summary, err := uc.statusRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}

// RunMediumSweep runs the fast sweep plus two slower checks: demoting
// long-backgrounded AVAILABLE drivers to BUSY, and surfacing processing
// slots that outlived the offer response window. Stale slots are only
// logged; resolution stays with the offer timeout path.
func (uc *DispatchUC) RunMediumSweep(ctx context.Context) (*models.CleanupResult, error) {
	result, err := uc.RunFastSweep(ctx)
	if err != nil {
		return nil, err
	}
	result.DemotedDriverIDs = []string{}
	now := time.Now()

	ids, err := uc.statusRepo.ConnectedDriverIDs(ctx)
	if err != nil {
		return nil, err
	}
	for _, driverID := range ids {
		record, err := uc.statusRepo.GetStatus(ctx, driverID)
		if err != nil {
			return nil, err
		}
		if record == nil || record.Status != models.DriverStatusAvailable {
			continue
		}
		if record.AppState != models.AppStateBackground || record.AppStateSince.IsZero() {
			continue
		}
		if now.Sub(record.AppStateSince) <= uc.backgroundDemoteAfter() {
			continue
		}

		if err := uc.statusRepo.DemoteToBusy(ctx, driverID); err != nil {
			return nil, err
		}
		result.DemotedDriverIDs = append(result.DemotedDriverIDs, driverID)
		logger.Info("Backgrounded driver demoted to busy",
			logger.String("driver_id", driverID),
			logger.Duration("backgrounded_for", now.Sub(record.AppStateSince)))
	}

	if err := uc.logStaleSlots(ctx, now); err != nil {
		return nil, err
	}

	summary, err := uc.statusRepo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}

func (uc *DispatchUC) logStaleSlots(ctx context.Context, now time.Time) error {
	driverIDs, err := uc.queueRepo.DriverIDsWithQueueData(ctx)
	if err != nil {
		return err
	}
	for _, driverID := range driverIDs {
		slot, err := uc.queueRepo.GetProcessing(ctx, driverID)
		if err != nil {
			return err
		}
		if slot == nil || slot.StartedAt.IsZero() {
			continue
		}
		age := now.Sub(slot.StartedAt)
		if age > uc.offerResponseTimeout() {
			logger.Warn("Processing slot exceeded offer response window",
				logger.String("driver_id", driverID),
				logger.String("trip_id", slot.TripID),
				logger.Duration("age", age))
		}
	}
	return nil
}

// RunDailySweep prunes data no TTL covers: geo-index members without a
// live location sample and queue payloads orphaned by past pops.
func (uc *DispatchUC) RunDailySweep(ctx context.Context) error {
	pruned, err := uc.locationRepo.CleanupGeoIndex(ctx)
	if err != nil {
		return err
	}

	orphans := 0
	driverIDs, err := uc.queueRepo.DriverIDsWithQueueData(ctx)
	if err != nil {
		return err
	}
	for _, driverID := range driverIDs {
		removed, err := uc.queueRepo.RemoveOrphanedItems(ctx, driverID)
		if err != nil {
			return err
		}
		orphans += removed
	}

	logger.Info("Daily cleanup finished",
		logger.Int("geo_members_pruned", pruned),
		logger.Int("orphaned_payloads_removed", orphans))
	return nil
}
