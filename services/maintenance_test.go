package services

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

var maintenanceNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func oldNotifications(n int) []models.Notification {
	out := make([]models.Notification, n)
	for i := range out {
		out[i] = models.Notification{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Title: "old", CreatedAt: maintenanceNow.AddDate(-1, 0, 0)}
	}
	return out
}

func TestArchiveNotificationsCopiesThenDeletes(t *testing.T) {
	freezeTime(t, maintenanceNow)
	h := newHarness(t, Deps{})
	rows := oldNotifications(2)
	h.c("notifications").On("Find", mock.Anything, filterWith(func(f bson.M) bool {
		lt, ok := f["createdAt"].(bson.M)
		return ok && lt["$lt"] == maintenanceNow.Add(-defaultNotificationRetention)
	}), mock.Anything).Return(cursorOf(rows), nil)
	var copied []interface{}
	h.c("notifications_archive").On("InsertMany", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		copied = args.Get(1).([]interface{})
	}).Return(2, nil)
	h.c("notifications").On("DeleteMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)

	n, ok := h.svc.Maintenance.ArchiveNotifications(ctx)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	if assert.Len(t, copied, 2) {
		archived := copied[0].(models.ArchivedNotification)
		assert.Equal(t, rows[0].ID, archived.ID)
		assert.Equal(t, maintenanceNow, archived.ArchivedAt)
	}
}

func TestArchiveCopyFailureKeepsRows(t *testing.T) {
	h := newHarness(t, Deps{})
	h.c("notifications").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf(oldNotifications(3)), nil)
	h.c("notifications_archive").On("InsertMany", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("disk full"))

	n, ok := h.svc.Maintenance.ArchiveNotifications(ctx)
	assert.False(t, ok)
	assert.Zero(t, n)
	h.c("notifications").AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchiveToleratesRowsCopiedEarlier(t *testing.T) {
	h := newHarness(t, Deps{})
	h.c("notifications").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf(oldNotifications(2)), nil)
	h.c("notifications_archive").On("InsertMany", mock.Anything, mock.Anything, mock.Anything).Return(1, duplicateKey())
	h.c("notifications").On("DeleteMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(2), nil)

	n, ok := h.svc.Maintenance.ArchiveNotifications(ctx)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestRunRetention(t *testing.T) {
	freezeTime(t, maintenanceNow)
	h := newHarness(t, Deps{})
	h.c("notifications").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf([]models.Notification{}), nil)
	h.c("events").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf([]models.Event{}), nil)
	h.c("password_resets").On("DeleteMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)
	h.c("login_attempts").On("DeleteMany", mock.Anything, filterWith(func(f bson.M) bool {
		lt, ok := f["createdAt"].(bson.M)
		return ok && lt["$lt"] == maintenanceNow.Add(-loginAttemptRetention)
	}), mock.Anything).Return(int64(4), nil)

	r := h.svc.Maintenance.RunRetention(ctx)
	assert.True(t, r.OK)
	assert.Equal(t, int64(3), r.ResetsRemoved)
	assert.Equal(t, int64(4), r.AttemptsRemoved)
	h.c("notifications_archive").AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunRetentionReportsFailure(t *testing.T) {
	h := newHarness(t, Deps{})
	h.c("notifications").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	h.c("events").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf([]models.Event{}), nil)
	h.c("password_resets").On("DeleteMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("login_attempts").On("DeleteMany", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	r := h.svc.Maintenance.RunRetention(ctx)
	assert.False(t, r.OK)
}

func upcomingCase(date, clock string) models.Case {
	c := warRoomCase(primitive.NewObjectID())
	c.ScheduledDate, c.ScheduledTime = date, clock
	return c
}

func TestSendTrialReminders(t *testing.T) {
	freezeTime(t, maintenanceNow)
	h := newHarness(t, Deps{})
	soon := upcomingCase("2025-03-02", "10:00:00")
	past := upcomingCase("2025-03-01", "09:00:00")
	late := upcomingCase("2025-03-02", "13:00:00")
	h.c("cases").On("Find", mock.Anything, filterWith(func(f bson.M) bool {
		days, ok := f["scheduledDate"].(bson.M)
		return ok && assert.ObjectsAreEqual([]string{"2025-03-01", "2025-03-02"}, days["$in"])
	}), mock.Anything).Return(cursorOf([]models.Case{soon, past, late}), nil)
	h.c("cases").On("UpdateOne", mock.Anything, filterWith(func(f bson.M) bool {
		return f["_id"] == soon.ID
	}), mock.Anything, mock.Anything).Return(updated(1), nil).Once()
	h.c("juror_applications").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf([]models.JurorApplication{
		{ID: primitive.NewObjectID(), CaseID: soon.ID, JurorID: primitive.NewObjectID(), Status: models.ApplicationApproved},
		{ID: primitive.NewObjectID(), CaseID: soon.ID, JurorID: primitive.NewObjectID(), Status: models.ApplicationApproved},
	}), nil)

	sent, ok := h.svc.Maintenance.SendTrialReminders(ctx)
	assert.True(t, ok)
	assert.Equal(t, 1, sent)
	h.c("cases").AssertNumberOfCalls(t, "UpdateOne", 1)
	h.c("notifications").AssertNumberOfCalls(t, "InsertOne", 3)
}

func TestSendTrialRemindersOnlyOnce(t *testing.T) {
	freezeTime(t, maintenanceNow)
	h := newHarness(t, Deps{})
	soon := upcomingCase("2025-03-01", "18:00:00")
	h.c("cases").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf([]models.Case{soon}), nil)
	// another instance stamped reminderSentAt first
	h.c("cases").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(0), nil)

	sent, ok := h.svc.Maintenance.SendTrialReminders(ctx)
	assert.True(t, ok)
	assert.Zero(t, sent)
	h.c("juror_applications").AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
	h.c("notifications").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}
