package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"dinepos/internal/jobs"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

const (
	lowStockInterval         = 30 * time.Minute
	analyticsRefreshInterval = 15 * time.Minute
)

// JobScheduler runs the periodic maintenance jobs of the POS backend.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    *jobs.InventoryAlertService
	refresher *jobs.AnalyticsRefreshService
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(alerts *jobs.InventoryAlertService, refresher *jobs.AnalyticsRefreshService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		refresher: refresher,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	logrus.Info("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	logrus.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if js.alerts != nil {
		if err := js.AddJob("inventory-low-stock", lowStockInterval, js.alerts.ScheduledLowStockCheck, context.Background()); err != nil {
			return err
		}
	}
	if js.refresher != nil {
		if err := js.AddJob("analytics-refresh", analyticsRefreshInterval, js.refresher.ScheduledAnalyticsRefresh, context.Background()); err != nil {
			return err
		}
	}
	logrus.WithField("jobs", len(js.jobs)).Info("registered background jobs")
	return nil
}

// AddJob schedules taskFn every interval. A run still in progress delays the next one.
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", name, err)
	}
	js.jobs[name] = job
	return nil
}

func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		delete(js.jobs, name)
		return js.scheduler.RemoveJob(job.ID())
	}
	return nil
}

// JobNames lists the registered jobs in name order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	names := js.JobNames()
	status := map[string]interface{}{
		"total_jobs": len(names),
		"jobs":       names,
	}

	js.mu.RLock()
	defer js.mu.RUnlock()
	nextRuns := make(map[string]time.Time, len(js.jobs))
	for name, job := range js.jobs {
		if next, err := job.NextRun(); err == nil {
			nextRuns[name] = next
		}
	}
	status["next_runs"] = nextRuns
	return status
}
