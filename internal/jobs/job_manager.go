package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	stageTimeoutJob *StageTimeoutJob
	logger          *zap.Logger
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(stageTimeoutJob *StageTimeoutJob, logger *zap.Logger) *JobManager {
	return &JobManager{
		stageTimeoutJob: stageTimeoutJob,
		logger:          logger.With(zap.String("component", "job_manager")),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.stageTimeoutJob.Start(); err != nil {
		return fmt.Errorf("failed to start stage timeout job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.stageTimeoutJob.Stop()
}
