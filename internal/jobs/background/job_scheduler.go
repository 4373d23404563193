package background

import (
	"context"
	"log"
	"time"

	"wegroup/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the periodic maintenance work: purging audit log entries
// past the retention window.
type JobScheduler struct {
	scheduler gocron.Scheduler
	auditSvc  services.AuditLogsService
	retention time.Duration
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(auditSvc services.AuditLogsService, retention time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &JobScheduler{
		scheduler: scheduler,
		auditSvc:  auditSvc,
		retention: retention,
	}, nil
}

// Start registers and launches the background jobs
func (js *JobScheduler) Start() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.purgeAuditLogs),
		gocron.WithName("audit-retention-purge"),
	)
	if err != nil {
		return err
	}

	js.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs
func (js *JobScheduler) Stop() error {
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) purgeAuditLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := js.auditSvc.PurgeOlderThan(ctx, js.retention)
	if err != nil {
		log.Printf("audit retention purge failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("audit retention purge removed %d entries", deleted)
	}
}
