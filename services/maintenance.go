package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/scheduling"
	templates "github.com/RupeshSangoju/quickverdicts-sub001/templates/html"
)

const (
	archiveBatchSize      = 500
	reminderLead          = 24 * time.Hour
	loginAttemptRetention = 24 * time.Hour

	defaultNotificationRetention = 90 * 24 * time.Hour
	defaultEventRetention        = 180 * 24 * time.Hour
)

// MaintenanceService runs the housekeeping jobs. Every job logs its failures and reports them
// as false instead of returning an error.
type MaintenanceService struct {
	Notifications       databases.NotificationDatabase
	NotificationArchive databases.ArchiveDatabase
	Events              databases.EventDatabase
	EventArchive        databases.ArchiveDatabase
	Resets              databases.PasswordResetDatabase
	Attempts            databases.LoginAttemptDatabase
	Cases               databases.CaseDatabase
	Applications        databases.ApplicationDatabase
	Notifier            *NotificationService
	BaseURL             string

	NotificationRetention time.Duration
	EventRetention        time.Duration
}

// RetentionReport summarizes one retention run
type RetentionReport struct {
	NotificationsArchived int   `json:"notificationsArchived"`
	EventsArchived        int   `json:"eventsArchived"`
	ResetsRemoved         int64 `json:"resetsRemoved"`
	AttemptsRemoved       int64 `json:"attemptsRemoved"`
	OK                    bool  `json:"ok"`
}

func retention(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func oldestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(archiveBatchSize)
}

// archive copies rows older than the cutoff into the shadow collection, then deletes them.
// A duplicate key on copy means an earlier run copied the batch but did not delete it.
func archive[T any](
	ctx context.Context,
	name string,
	find func(context.Context, interface{}, ...*options.FindOptions) ([]T, error),
	deleteMany func(context.Context, interface{}, ...*options.DeleteOptions) (int64, error),
	shadow databases.ArchiveDatabase,
	cutoff time.Time,
	wrap func(T, time.Time) (primitive.ObjectID, interface{}),
) (int, bool) {
	total := 0
	for {
		batch, err := find(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}}, oldestFirst())
		if err != nil {
			zap.S().Errorw("failed to load rows to archive", "collection", name, "error", err)
			return total, false
		}
		if len(batch) == 0 {
			return total, true
		}

		stamp := now()
		ids := make([]primitive.ObjectID, 0, len(batch))
		docs := make([]interface{}, 0, len(batch))
		for _, row := range batch {
			id, doc := wrap(row, stamp)
			ids = append(ids, id)
			docs = append(docs, doc)
		}
		if _, err := shadow.InsertMany(ctx, docs); err != nil && !mongo.IsDuplicateKeyError(err) {
			zap.S().Errorw("failed to copy rows to archive", "collection", name, "error", err)
			return total, false
		}
		deleted, err := deleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			zap.S().Errorw("failed to delete archived rows", "collection", name, "error", err)
			return total, false
		}
		total += int(deleted)
		if len(batch) < archiveBatchSize {
			return total, true
		}
	}
}

// ArchiveNotifications moves notifications past the retention window to the archive
func (s *MaintenanceService) ArchiveNotifications(ctx context.Context) (int, bool) {
	cutoff := now().Add(-retention(s.NotificationRetention, defaultNotificationRetention))
	n, ok := archive(ctx, "notifications", s.Notifications.Find, s.Notifications.DeleteMany, s.NotificationArchive, cutoff,
		func(row models.Notification, at time.Time) (primitive.ObjectID, interface{}) {
			return row.ID, models.ArchivedNotification{Notification: row, ArchivedAt: at}
		})
	zap.S().Infow("notification archive run", "archived", n, "ok", ok, "cutoff", cutoff)
	return n, ok
}

// ArchiveEvents moves case events past the retention window to the archive
func (s *MaintenanceService) ArchiveEvents(ctx context.Context) (int, bool) {
	cutoff := now().Add(-retention(s.EventRetention, defaultEventRetention))
	n, ok := archive(ctx, "events", s.Events.Find, s.Events.DeleteMany, s.EventArchive, cutoff,
		func(row models.Event, at time.Time) (primitive.ObjectID, interface{}) {
			return row.ID, models.ArchivedEvent{Event: row, ArchivedAt: at}
		})
	zap.S().Infow("event archive run", "archived", n, "ok", ok, "cutoff", cutoff)
	return n, ok
}

// CleanupAuth drops expired or spent reset tokens and old login attempts
func (s *MaintenanceService) CleanupAuth(ctx context.Context) (resets, attempts int64, ok bool) {
	t := now()
	ok = true
	var err error
	if s.Resets != nil {
		resets, err = s.Resets.DeleteMany(ctx, bson.M{"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": t}},
			{"usedAt": bson.M{"$ne": nil}},
		}})
		if err != nil {
			zap.S().Errorw("failed to remove stale reset tokens", "error", err)
			ok = false
		}
	}
	if s.Attempts != nil {
		attempts, err = s.Attempts.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": t.Add(-loginAttemptRetention)}})
		if err != nil {
			zap.S().Errorw("failed to remove old login attempts", "error", err)
			ok = false
		}
	}
	return resets, attempts, ok
}

// RunRetention runs every retention job and reports what it did
func (s *MaintenanceService) RunRetention(ctx context.Context) RetentionReport {
	var r RetentionReport
	var okN, okE, okA bool
	r.NotificationsArchived, okN = s.ArchiveNotifications(ctx)
	r.EventsArchived, okE = s.ArchiveEvents(ctx)
	r.ResetsRemoved, r.AttemptsRemoved, okA = s.CleanupAuth(ctx)
	r.OK = okN && okE && okA
	return r
}

// SendTrialReminders notifies the attorney and approved jurors of every approved case starting
// within the next day. Each case is reminded once.
func (s *MaintenanceService) SendTrialReminders(ctx context.Context) (int, bool) {
	t := now()
	horizon := t.Add(reminderLead)
	days := []string{t.Format(scheduling.DateLayout), horizon.Format(scheduling.DateLayout)}
	upcoming, err := s.Cases.Find(ctx, bson.M{
		"isDeleted":           false,
		"adminApprovalStatus": models.ApprovalStatusApproved,
		"attorneyStatus":      bson.M{"$in": []string{models.AttorneyStatusWarRoom, models.AttorneyStatusJoinTrial}},
		"scheduledDate":       bson.M{"$in": days},
		"reminderSentAt":      nil,
	})
	if err != nil {
		zap.S().Errorw("failed to load upcoming trials", "error", err)
		return 0, false
	}

	sent := 0
	for _, c := range upcoming {
		start, err := scheduling.ParseSlot(c.ScheduledDate, c.ScheduledTime)
		if err != nil || start.Before(t) || start.After(horizon) {
			continue
		}
		res, err := s.Cases.UpdateOne(ctx,
			bson.M{"_id": c.ID, "reminderSentAt": nil},
			bson.M{"$set": bson.M{"reminderSentAt": t}},
		)
		if err != nil {
			zap.S().Errorw("failed to mark trial reminder", "caseId", c.ID.Hex(), "error", err)
			continue
		}
		if res.ModifiedCount == 0 {
			continue
		}

		loc := scheduling.ResolveLocation(c.TimeZone, c.State)
		when := start.In(loc).Format("Mon Jan 2 at 3:04 PM MST")
		msg := fmt.Sprintf("%q starts %s.", c.Title, when)
		link := strings.TrimRight(s.BaseURL, "/") + "/cases/" + c.ID.Hex() + "/war-room"
		title := c.Title
		render := func(name string) string { return templates.RenderTrialReminderEmail(name, title, when, link) }
		s.Notifier.notifyQuietly(ctx, NotifyInput{
			UserID: c.AttorneyID, UserType: models.UserTypeAttorney, CaseID: ptrID(c.ID),
			Type: models.NotificationTrialStarting, Title: "Trial reminder", Message: msg, Email: true, Render: render,
		})
		jurors, err := s.Applications.Find(ctx, bson.M{"caseId": c.ID, "status": models.ApplicationApproved})
		if err != nil {
			zap.S().Errorw("failed to load jurors for reminder", "caseId", c.ID.Hex(), "error", err)
		}
		for _, a := range jurors {
			s.Notifier.notifyQuietly(ctx, NotifyInput{
				UserID: a.JurorID, UserType: models.UserTypeJuror, CaseID: ptrID(c.ID),
				Type: models.NotificationTrialStarting, Title: "Trial reminder", Message: msg, Email: true, Render: render,
			})
		}
		sent++
	}
	zap.S().Infow("trial reminders sent", "cases", sent)
	return sent, true
}
