package jobs

import (
	"time"

	"scootshare-backend/internal/config"
	"scootshare-backend/internal/logger"
	"scootshare-backend/internal/repository"
	"scootshare-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	store    repository.Store
	notifier service.Notifier
	config   *config.Config
	now      func() time.Time
}

func NewJobRunner(store repository.Store, notifier service.Notifier, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		notifier: notifier,
		config:   cfg,
		now:      time.Now,
	}
}

// Config exposes the configuration for the scheduler's cron registration.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	log := logger.WithJob(jobName)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
		}
	}()

	log.Debug("Starting job")
	jobFunc()
	log.Debug("Job completed")
}
