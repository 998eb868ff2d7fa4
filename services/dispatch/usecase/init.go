package usecase

import (
	"time"

	"github.com/openride/dispatch/internal/pkg/lock"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// DispatchUC implements the dispatch coordination business logic
type DispatchUC struct {
	cfg          *models.Config
	statusRepo   dispatch.DriverStatusRepo
	queueRepo    dispatch.TripQueueRepo
	locationRepo dispatch.LocationRepo
	lockMgr      *lock.Manager
	gateway      dispatch.DispatchGW
}

// NewDispatchUC creates a new dispatch usecase
func NewDispatchUC(
	cfg *models.Config,
	statusRepo dispatch.DriverStatusRepo,
	queueRepo dispatch.TripQueueRepo,
	locationRepo dispatch.LocationRepo,
	lockMgr *lock.Manager,
	gateway dispatch.DispatchGW,
) *DispatchUC {
	return &DispatchUC{
		cfg:          cfg,
		statusRepo:   statusRepo,
		queueRepo:    queueRepo,
		locationRepo: locationRepo,
		lockMgr:      lockMgr,
		gateway:      gateway,
	}
}

func (uc *DispatchUC) lockOptions() lock.Options {
	return lock.Options{
		TTL:        time.Duration(uc.cfg.Dispatch.LockTTL) * time.Second,
		Retries:    uc.cfg.Dispatch.LockRetries,
		RetryDelay: time.Duration(uc.cfg.Dispatch.LockRetryDelayMs) * time.Millisecond,
	}
}

func (uc *DispatchUC) heartbeatTimeout() time.Duration {
	return time.Duration(uc.cfg.Dispatch.HeartbeatTimeout) * time.Second
}

func (uc *DispatchUC) backgroundDemoteAfter() time.Duration {
	return time.Duration(uc.cfg.Dispatch.BackgroundDemoteSec) * time.Second
}

func (uc *DispatchUC) offerResponseTimeout() time.Duration {
	return time.Duration(uc.cfg.Dispatch.OfferResponseTimeout) * time.Second
}
