package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// statusTTL bounds how long a status record outlives its last mutation.
// Well beyond the heartbeat timeout so the reaper sees expired drivers
// before the store drops them.
const statusTTL = 48 * time.Hour

// customerPresenceTTL makes a customer presence marker read as absent
// once stale; no reaper involvement needed.
const customerPresenceTTL = 5 * time.Minute

type statusRepo struct {
	redisClient *database.RedisClient
}

// NewDriverStatusRepository creates a Redis-backed driver status repository
func NewDriverStatusRepository(redisClient *database.RedisClient) dispatch.DriverStatusRepo {
	return &statusRepo{redisClient: redisClient}
}

func statusKey(driverID string) string {
	return fmt.Sprintf(constants.KeyDriverStatus, driverID)
}

// GetStatus returns the stored record, or nil when the driver is unknown
func (r *statusRepo) GetStatus(ctx context.Context, driverID string) (*models.DriverStatusRecord, error) {
	values, err := r.redisClient.HGetAll(ctx, statusKey(driverID))
	if err != nil {
		return nil, fmt.Errorf("failed to get driver status: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return recordFromHash(driverID, values), nil
}

// RecordHeartbeat refreshes liveness; an OFFLINE or unknown driver
// transitions to CONNECTED.
func (r *statusRepo) RecordHeartbeat(ctx context.Context, driverID string, appState models.AppState, at time.Time) (*models.DriverStatusRecord, error) {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if record == nil {
		record = &models.DriverStatusRecord{
			DriverID: driverID,
			Status:   models.DriverStatusConnected,
			AppState: appState,
		}
	} else if record.Status == models.DriverStatusOffline {
		record.Status = models.DriverStatusConnected
	}

	record.LastHeartbeatAt = at
	if record.AppState != appState || record.AppStateSince.IsZero() {
		record.AppState = appState
		record.AppStateSince = at
	}

	if err := r.save(ctx, record); err != nil {
		return nil, err
	}
	if err := r.redisClient.SAdd(ctx, constants.KeyConnectedDrivers, driverID); err != nil {
		return nil, fmt.Errorf("failed to track connected driver: %w", err)
	}
	return record, nil
}

// RecordCustomerPresence keeps a TTL-bounded liveness marker for
// customers; their availability is not state-machine tracked.
func (r *statusRepo) RecordCustomerPresence(ctx context.Context, customerID string, at time.Time) error {
	key := fmt.Sprintf(constants.KeyCustomerPresence, customerID)
	value := strconv.FormatInt(at.Unix(), 10)
	if err := r.redisClient.Set(ctx, key, value, customerPresenceTTL); err != nil {
		return fmt.Errorf("failed to record customer presence: %w", err)
	}
	return nil
}

// SetAvailability toggles the driver beacon; invalid while ON_TRIP
func (r *statusRepo) SetAvailability(ctx context.Context, driverID string, available bool) (*models.DriverStatusRecord, error) {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, dispatch.ErrDriverNotFound
	}
	if record.Status == models.DriverStatusOnTrip {
		return nil, dispatch.ErrDriverOnTrip
	}

	if available {
		record.Status = models.DriverStatusAvailable
	} else {
		record.Status = models.DriverStatusBusy
	}
	if err := r.save(ctx, record); err != nil {
		return nil, err
	}
	if err := r.syncAvailableSet(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// MarkOnTrip records the pre-trip availability and moves the driver to
// ON_TRIP with the trip bound.
func (r *statusRepo) MarkOnTrip(ctx context.Context, driverID, tripID string) error {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return err
	}
	if record == nil {
		return dispatch.ErrDriverNotFound
	}
	if record.Status == models.DriverStatusOffline {
		return dispatch.ErrDriverOffline
	}
	if record.Status == models.DriverStatusOnTrip {
		return dispatch.ErrDriverOnTrip
	}

	if record.Status == models.DriverStatusAvailable || record.Status == models.DriverStatusBusy {
		record.PrevAvailability = record.Status
	}
	record.Status = models.DriverStatusOnTrip
	record.CurrentTripID = tripID

	if err := r.save(ctx, record); err != nil {
		return err
	}
	return r.syncAvailableSet(ctx, record)
}

// ClearTrip reverts the driver to its pre-trip availability
func (r *statusRepo) ClearTrip(ctx context.Context, driverID string) (*models.DriverStatusRecord, error) {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, dispatch.ErrDriverNotFound
	}

	if record.PrevAvailability == models.DriverStatusBusy {
		record.Status = models.DriverStatusBusy
	} else {
		record.Status = models.DriverStatusAvailable
	}
	record.CurrentTripID = ""
	record.PrevAvailability = ""

	if err := r.save(ctx, record); err != nil {
		return nil, err
	}
	if err := r.syncAvailableSet(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ForceOffline marks the driver OFFLINE; the record is kept (marked,
// not deleted) so introspection still sees the eviction.
func (r *statusRepo) ForceOffline(ctx context.Context, driverID string) error {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	record.Status = models.DriverStatusOffline
	record.CurrentTripID = ""
	record.PrevAvailability = ""
	if err := r.save(ctx, record); err != nil {
		return err
	}
	if err := r.redisClient.SRem(ctx, constants.KeyAvailableDrivers, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from available set: %w", err)
	}
	if err := r.redisClient.SRem(ctx, constants.KeyConnectedDrivers, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from connected set: %w", err)
	}
	return nil
}

// DemoteToBusy moves an AVAILABLE driver to BUSY
func (r *statusRepo) DemoteToBusy(ctx context.Context, driverID string) error {
	record, err := r.GetStatus(ctx, driverID)
	if err != nil {
		return err
	}
	if record == nil || record.Status != models.DriverStatusAvailable {
		return nil
	}

	record.Status = models.DriverStatusBusy
	if err := r.save(ctx, record); err != nil {
		return err
	}
	return r.syncAvailableSet(ctx, record)
}

// ConnectedDriverIDs lists drivers with a live status record
func (r *statusRepo) ConnectedDriverIDs(ctx context.Context) ([]string, error) {
	ids, err := r.redisClient.SMembers(ctx, constants.KeyConnectedDrivers)
	if err != nil {
		return nil, fmt.Errorf("failed to list connected drivers: %w", err)
	}
	return ids, nil
}

// Summary aggregates driver counts per status
func (r *statusRepo) Summary(ctx context.Context) (models.StatusSummary, error) {
	var summary models.StatusSummary

	ids, err := r.ConnectedDriverIDs(ctx)
	if err != nil {
		return summary, err
	}

	for _, id := range ids {
		record, err := r.GetStatus(ctx, id)
		if err != nil {
			return summary, err
		}
		if record == nil {
			continue
		}
		switch record.Status {
		case models.DriverStatusConnected:
			summary.Connected++
		case models.DriverStatusAvailable:
			summary.Available++
		case models.DriverStatusBusy:
			summary.Busy++
		case models.DriverStatusOnTrip:
			summary.OnTrip++
		}
	}
	return summary, nil
}

func (r *statusRepo) save(ctx context.Context, record *models.DriverStatusRecord) error {
	key := statusKey(record.DriverID)
	values := map[string]interface{}{
		constants.FieldStatus:           string(record.Status),
		constants.FieldLastHeartbeat:    strconv.FormatInt(record.LastHeartbeatAt.Unix(), 10),
		constants.FieldAppState:         string(record.AppState),
		constants.FieldAppStateSince:    strconv.FormatInt(record.AppStateSince.Unix(), 10),
		constants.FieldCurrentTripID:    record.CurrentTripID,
		constants.FieldPrevAvailability: string(record.PrevAvailability),
	}
	if err := r.redisClient.HSet(ctx, key, values); err != nil {
		return fmt.Errorf("failed to save driver status: %w", err)
	}
	if err := r.redisClient.Expire(ctx, key, statusTTL); err != nil {
		return fmt.Errorf("failed to set driver status TTL: %w", err)
	}
	return nil
}

func (r *statusRepo) syncAvailableSet(ctx context.Context, record *models.DriverStatusRecord) error {
	var err error
	if record.Status == models.DriverStatusAvailable {
		err = r.redisClient.SAdd(ctx, constants.KeyAvailableDrivers, record.DriverID)
	} else {
		err = r.redisClient.SRem(ctx, constants.KeyAvailableDrivers, record.DriverID)
	}
	if err != nil {
		return fmt.Errorf("failed to sync available set: %w", err)
	}
	return nil
}

func recordFromHash(driverID string, values map[string]string) *models.DriverStatusRecord {
	record := &models.DriverStatusRecord{
		DriverID:         driverID,
		Status:           models.DriverStatus(values[constants.FieldStatus]),
		AppState:         models.AppState(values[constants.FieldAppState]),
		CurrentTripID:    values[constants.FieldCurrentTripID],
		PrevAvailability: models.DriverStatus(values[constants.FieldPrevAvailability]),
	}
	if ts, err := strconv.ParseInt(values[constants.FieldLastHeartbeat], 10, 64); err == nil && ts > 0 {
		record.LastHeartbeatAt = time.Unix(ts, 0)
	}
	if ts, err := strconv.ParseInt(values[constants.FieldAppStateSince], 10, 64); err == nil && ts > 0 {
		record.AppStateSince = time.Unix(ts, 0)
	}
	return record
}
