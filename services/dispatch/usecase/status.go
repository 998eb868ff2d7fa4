package usecase

import (
	"context"
	"time"

	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// Heartbeat records a liveness signal. Drivers move through the status
// state machine; customers only refresh a presence marker.
func (uc *DispatchUC) Heartbeat(ctx context.Context, req *models.HeartbeatRequest) (*models.HeartbeatResponse, error) {
	now := time.Now()

	switch req.UserType {
	case models.UserTypeDriver:
		appState := req.AppState
		if appState == "" {
			appState = models.AppStateForeground
		}
		record, err := uc.statusRepo.RecordHeartbeat(ctx, req.UserID, appState, now)
		if err != nil {
			return nil, err
		}
		logger.Debug("Driver heartbeat recorded",
			logger.String("driver_id", req.UserID),
			logger.String("status", string(record.Status)),
			logger.String("app_state", string(record.AppState)))
	case models.UserTypeCustomer:
		if err := uc.statusRepo.RecordCustomerPresence(ctx, req.UserID, now); err != nil {
			return nil, err
		}
	default:
		return nil, dispatch.ErrInvalidUserType
	}

	return &models.HeartbeatResponse{
		Acknowledged:    true,
		NextIntervalSec: uc.cfg.Dispatch.HeartbeatInterval,
	}, nil
}

// SetDriverAvailability toggles the availability beacon. The repository
// refuses the toggle while the driver is ON_TRIP.
func (uc *DispatchUC) SetDriverAvailability(ctx context.Context, driverID string, available bool) error {
	record, err := uc.statusRepo.SetAvailability(ctx, driverID, available)
	if err != nil {
		return err
	}

	logger.Info("Driver availability updated",
		logger.String("driver_id", driverID),
		logger.String("status", string(record.Status)))
	return nil
}
