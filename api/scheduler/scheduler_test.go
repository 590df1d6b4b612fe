package scheduler

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases/mocks"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

type fakeJobs struct {
	retentionRuns int
	reminderRuns  int
}

func (f *fakeJobs) RunRetention(context.Context) services.RetentionReport {
	f.retentionRuns++
	return services.RetentionReport{NotificationsArchived: 3, OK: true}
}

func (f *fakeJobs) SendTrialReminders(context.Context) (int, bool) {
	f.reminderRuns++
	return 1, true
}

func TestRetentionRunsUnderLock(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	locks := &mocks.SchedulerLockDatabase{}
	locks.On("TryAcquireLock", mock.Anything, RetentionJob, "web.1", mock.Anything).Return(true, nil)
	locks.On("ReleaseLock", mock.Anything, RetentionJob, "web.1").Return(nil)
	jobs := &fakeJobs{}

	NewScheduler(jobs, locks).runRetention()

	assert.Equal(t, 1, jobs.retentionRuns)
	locks.AssertExpectations(t)
}

func TestJobSkippedWhenAnotherInstanceHoldsLock(t *testing.T) {
	locks := &mocks.SchedulerLockDatabase{}
	locks.On("TryAcquireLock", mock.Anything, ReminderJob, mock.Anything, mock.Anything).Return(false, nil)
	jobs := &fakeJobs{}

	NewScheduler(jobs, locks).sendTrialReminders()

	assert.Zero(t, jobs.reminderRuns)
	locks.AssertNotCalled(t, "ReleaseLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestJobSkippedWhenLockFails(t *testing.T) {
	locks := &mocks.SchedulerLockDatabase{}
	locks.On("TryAcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("no primary"))
	jobs := &fakeJobs{}

	s := NewScheduler(jobs, locks)
	assert.False(t, s.locked(RetentionJob, 0, func(context.Context) bool { return true }))
	assert.Zero(t, jobs.retentionRuns)
}

func TestInstanceIDFallback(t *testing.T) {
	t.Setenv("DYNO", "")
	s := NewScheduler(&fakeJobs{}, &mocks.SchedulerLockDatabase{})
	assert.Contains(t, s.instanceID, "instance-")
}
