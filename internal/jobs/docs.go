// Package jobs provides scheduled background tasks for the fulfillment
// coordinator.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the workflow.
//
// # Available Jobs
//
// 1. StageTimeoutJob - Runs every minute to detect orders stuck in a
// non-terminal status past the stage SLA and fail them through the normal
// outcome path.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(stageTimeoutJob, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("failed to start jobs", zap.Error(err))
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The timeout job treats each stuck order independently: a failure to fail
// one order is logged and does not stop the sweep.
package jobs
