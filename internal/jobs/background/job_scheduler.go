package background

import (
	"context"
	"log"
	"sync"
	"time"

	"conexx/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler owns the recurring background work: the tenant sync pass, the
// subscription expiration check, and the report-push sweep.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	syncSvc         services.SyncService
	subscriptionSvc services.SubscriptionService
	reportSvc       services.ReportService
	syncInterval    time.Duration
	jobs            map[string]gocron.Job
	mu              sync.RWMutex
}

func NewJobScheduler(
	syncSvc services.SyncService,
	subscriptionSvc services.SubscriptionService,
	reportSvc services.ReportService,
	syncInterval time.Duration,
) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	if syncInterval <= 0 {
		syncInterval = 10 * time.Minute
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		syncSvc:         syncSvc,
		subscriptionSvc: subscriptionSvc,
		reportSvc:       reportSvc,
		syncInterval:    syncInterval,
		jobs:            make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Tenant sync pass. Singleton reschedule mode keeps a slow pass from
	// stacking on top of itself; the per-tenant redis lease covers the
	// manual-trigger case.
	syncJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.syncInterval),
		gocron.NewTask(js.runSyncPass, context.Background()),
		gocron.WithName("tenant-sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Printf("Failed to create sync job: %v", err)
	} else {
		js.jobs["tenant-sync"] = syncJob
	}

	// Subscription expiration check - hourly.
	expirationJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.runExpirationCheck, context.Background()),
		gocron.WithName("subscription-expirations"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Printf("Failed to create expiration job: %v", err)
	} else {
		js.jobs["subscription-expirations"] = expirationJob
	}

	// Report-push sweep - every 15 minutes. The sweep itself decides which
	// tenants are due; re-running it is harmless.
	reportJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.runReportSweep, context.Background()),
		gocron.WithName("report-push-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create report sweep job: %v", err)
	} else {
		js.jobs["report-push-sweep"] = reportJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) runSyncPass(ctx context.Context) error {
	log.Printf("Starting tenant sync pass")
	if err := js.syncSvc.SyncAll(ctx); err != nil {
		log.Printf("Tenant sync pass failed: %v", err)
		return err
	}
	log.Printf("Completed tenant sync pass")
	return nil
}

func (js *JobScheduler) runExpirationCheck(ctx context.Context) error {
	log.Printf("Starting subscription expiration check")
	if err := js.subscriptionSvc.CheckExpirations(ctx); err != nil {
		log.Printf("Subscription expiration check failed: %v", err)
		return err
	}
	log.Printf("Completed subscription expiration check")
	return nil
}

func (js *JobScheduler) runReportSweep(ctx context.Context) error {
	if err := js.reportSvc.RunDuePushes(ctx); err != nil {
		log.Printf("Report push sweep failed: %v", err)
		return err
	}
	return nil
}

// GetJobStatus reports the registered job names for the health endpoint.
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		jobs = append(jobs, name)
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}
