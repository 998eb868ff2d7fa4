package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/openride/dispatch/internal/pkg/logger"
)

// Scheduler runs periodic jobs on fixed cadences. Each job is expected
// to be a self-contained, idempotent reconciliation pass; a failing run
// never stops the schedule.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Register adds a job on the given cron spec (e.g. "@every 2m")
func (s *Scheduler) Register(spec, name string, job func() error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(); err != nil {
			logger.Error("Scheduled job failed",
				logger.String("job", name),
				logger.String("spec", spec),
				logger.Err(err))
		}
	})
	return err
}

// Start begins running registered jobs in their own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
