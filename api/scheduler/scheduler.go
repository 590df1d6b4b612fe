package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Job names double as scheduler lock ids
const (
	RetentionJob = "retention_job"
	ReminderJob  = "trial_reminder_job"
)

// Jobs is the housekeeping run in the background
type Jobs interface {
	RunRetention(ctx context.Context) services.RetentionReport
	SendTrialReminders(ctx context.Context) (int, bool)
}

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	Jobs       Jobs
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(jobs Jobs, lockDB databases.SchedulerLockDatabase) *Scheduler {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Jobs:       jobs,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// archive notifications and events daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.runRetention)
	if err != nil {
		zap.S().Errorw("failed to register retention job", "error", err)
	}

	_, err = s.cron.AddFunc("0 * * * *", s.sendTrialReminders)
	if err != nil {
		zap.S().Errorw("failed to register trial reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "instance", s.instanceID)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

// locked runs fn if this instance holds the job's lease. It reports whether fn ran.
func (s *Scheduler) locked(job string, timeout time.Duration, fn func(ctx context.Context) bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, job, s.instanceID, 2*timeout)
	if err != nil {
		zap.S().Errorw("failed to acquire scheduler lock", "job", job, "error", err)
		return false
	}
	if !acquired {
		zap.S().Debugw("job already running on another instance, skipping", "job", job)
		return false
	}
	defer func() {
		if err := s.LockDB.ReleaseLock(context.Background(), job, s.instanceID); err != nil {
			zap.S().Warnw("failed to release scheduler lock", "job", job, "error", err)
		}
	}()

	ok := fn(ctx)
	api.ObserveJob(job, ok)
	return true
}

func (s *Scheduler) runRetention() {
	s.locked(RetentionJob, 10*time.Minute, func(ctx context.Context) bool {
		r := s.Jobs.RunRetention(ctx)
		zap.S().Infow("retention job finished",
			"instance", s.instanceID,
			"notificationsArchived", r.NotificationsArchived,
			"eventsArchived", r.EventsArchived,
			"resetsRemoved", r.ResetsRemoved,
			"attemptsRemoved", r.AttemptsRemoved,
			"ok", r.OK,
		)
		return r.OK
	})
}

func (s *Scheduler) sendTrialReminders() {
	s.locked(ReminderJob, 5*time.Minute, func(ctx context.Context) bool {
		sent, ok := s.Jobs.SendTrialReminders(ctx)
		zap.S().Infow("trial reminder job finished", "instance", s.instanceID, "cases", sent, "ok", ok)
		return ok
	})
}
