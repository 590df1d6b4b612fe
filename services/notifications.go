package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	templates "github.com/RupeshSangoju/quickverdicts-sub001/templates/html"
)

// NotificationService stores user notifications and fans them out live and by email
type NotificationService struct {
	DB        databases.NotificationDatabase
	Attorneys databases.AttorneyDatabase
	Jurors    databases.JurorDatabase
	Admins    databases.AdminDatabase
	Realtime  Realtime
	Mailer    Mailer
}

// NotifyInput describes one notification; Email also sends it by mail
type NotifyInput struct {
	UserID   primitive.ObjectID
	UserType string
	CaseID   *primitive.ObjectID
	Type     string
	Title    string
	Message  string
	Email    bool

	// Render builds the email body for the recipient's name; the generic template is used when nil
	Render func(name string) string
}

// Notify stores the notification, pushes it to a connected client and optionally emails it
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if !models.IsValidNotificationType(in.Type) {
		return nil, invalid("unknown notification type " + in.Type)
	}
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    in.UserID,
		UserType:  in.UserType,
		CaseID:    in.CaseID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: now(),
	}
	if _, err := s.DB.InsertOne(ctx, n); err != nil {
		return nil, errors.Wrap(err, "failed to insert notification")
	}
	if s.Realtime != nil {
		s.Realtime.PushToUser(n.UserID.Hex(), "new_notification", n)
	}
	if in.Email {
		s.email(ctx, in)
	}
	return &n, nil
}

// notifyQuietly is Notify for side effects of another operation; errors are only logged
func (s *NotificationService) notifyQuietly(ctx context.Context, in NotifyInput) {
	if s == nil {
		return
	}
	if _, err := s.Notify(ctx, in); err != nil {
		zap.S().Errorw("failed to send notification", "userId", in.UserID.Hex(), "type", in.Type, "error", err)
	}
}

// notifyAdmins sends the same notification to every active admin
func (s *NotificationService) notifyAdmins(ctx context.Context, in NotifyInput) {
	if s == nil || s.Admins == nil {
		return
	}
	admins, err := s.Admins.Find(ctx, bson.M{"active": true})
	if err != nil {
		zap.S().Errorw("failed to list admins for notification", "type", in.Type, "error", err)
		return
	}
	for _, a := range admins {
		in.UserID = a.ID
		in.UserType = models.UserTypeAdmin
		s.notifyQuietly(ctx, in)
	}
}

func (s *NotificationService) email(ctx context.Context, in NotifyInput) {
	if s.Mailer == nil {
		return
	}
	name, addr, err := s.recipient(ctx, in.UserID, in.UserType)
	if err != nil {
		zap.S().Warnw("no email address for notification", "userId", in.UserID.Hex(), "error", err)
		return
	}
	html := templates.RenderGenericEmail(in.Title, in.Message)
	if in.Render != nil {
		html = in.Render(name)
	}
	if err := s.Mailer.Send(ctx, name, addr, in.Title, in.Message, html); err != nil {
		zap.S().Errorw("failed to email notification", "userId", in.UserID.Hex(), "type", in.Type, "error", err)
	}
}

func (s *NotificationService) recipient(ctx context.Context, id primitive.ObjectID, userType string) (string, string, error) {
	filter := bson.M{"_id": id}
	switch userType {
	case models.UserTypeAttorney:
		a, err := s.Attorneys.FindOne(ctx, filter)
		if err != nil {
			return "", "", err
		}
		return a.FullName(), a.Email, nil
	case models.UserTypeJuror:
		j, err := s.Jurors.FindOne(ctx, filter)
		if err != nil {
			return "", "", err
		}
		return j.Name, j.Email, nil
	case models.UserTypeAdmin:
		a, err := s.Admins.FindOne(ctx, filter)
		if err != nil {
			return "", "", err
		}
		return a.Name, a.Email, nil
	}
	return "", "", errors.Errorf("unknown user type %q", userType)
}

// List returns a user's notifications newest first
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, p databases.Paginate) (Page[models.Notification], error) {
	filter := bson.M{"userId": userID}
	if unreadOnly {
		filter["isRead"] = false
	}
	total, err := s.DB.CountDocuments(ctx, filter)
	if err != nil {
		return Page[models.Notification]{}, errors.Wrap(err, "failed to count notifications")
	}
	items, err := s.DB.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return Page[models.Notification]{}, errors.Wrap(err, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return Page[models.Notification]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// MarkRead marks one of the user's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now()}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to mark notification read")
	}
	if res.MatchedCount == 0 {
		return notFound("notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.DB.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "readAt": now()}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to mark notifications read")
	}
	return res.ModifiedCount, nil
}

// UnreadCount counts a user's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.DB.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
	return n, errors.Wrap(err, "failed to count unread notifications")
}
