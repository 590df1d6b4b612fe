package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

// IsAdmin reports whether the actor is an admin
func (a Actor) IsAdmin() bool { return a.Role == models.UserTypeAdmin }

// Realtime pushes live events to connected clients
type Realtime interface {
	PushToUser(userID, event string, payload interface{})
	BroadcastToCase(caseID, event string, payload interface{})
}

// Mailer delivers a single email
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, plain, html string) error
}

// AssetStore holds uploaded document and recording bytes
type AssetStore interface {
	SignUpload(folder string) (UploadSignature, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// UploadSignature lets a client upload straight to the asset store
type UploadSignature struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
	Signature string `json:"signature"`
}

// PaymentGateway moves money through the payment processor. Amounts are in cents.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int64, currency, customerID, description string, metadata map[string]string) (externalID, status string, err error)
	Payout(ctx context.Context, amount int64, currency, destination, description string) (externalID string, err error)
	Refund(ctx context.Context, externalID string, amount int64) (refundID string, err error)
}

// Page is one page of a listing
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

// Services bundles every service wired to one database
type Services struct {
	Cases         *CaseService
	Reschedules   *AttorneyRescheduleService
	Applications  *ApplicationService
	Verdicts      *VerdictService
	Meetings      *MeetingService
	Payments      *PaymentService
	Notifications *NotificationService
	Events        *EventService
	Calendar      *CalendarService
	Documents     *DocumentService
	Auth          *AuthService
	Maintenance   *MaintenanceService
}

// Deps are the outside collaborators; any of them may be nil
type Deps struct {
	Realtime Realtime
	Mailer   Mailer
	Assets   AssetStore
	Gateway  PaymentGateway
	Issuer   TokenIssuer
	BaseURL  string

	NotificationRetention time.Duration
	EventRetention        time.Duration
}

// New wires all services over db
func New(db databases.DatabaseHelper, deps Deps) *Services {
	cases := databases.NewCaseDatabase(db)
	attorneys := databases.NewAttorneyDatabase(db)
	jurors := databases.NewJurorDatabase(db)
	admins := databases.NewAdminDatabase(db)
	applications := databases.NewApplicationDatabase(db)
	calendar := databases.NewCalendarDatabase(db)

	events := &EventService{DB: databases.NewEventDatabase(db)}
	notifications := &NotificationService{
		DB:        databases.NewNotificationDatabase(db),
		Attorneys: attorneys,
		Jurors:    jurors,
		Admins:    admins,
		Realtime:  deps.Realtime,
		Mailer:    deps.Mailer,
	}

	s := &Services{Events: events, Notifications: notifications}
	s.Cases = &CaseService{
		Cases:        cases,
		Attorneys:    attorneys,
		Applications: applications,
		Calendar:     calendar,
		Reschedules:  databases.NewCaseRescheduleDatabase(db),
		Events:       events,
		Notifier:     notifications,
	}
	s.Reschedules = &AttorneyRescheduleService{
		DB:       databases.NewAttorneyRescheduleDatabase(db),
		Cases:    s.Cases,
		Events:   events,
		Notifier: notifications,
	}
	s.Applications = &ApplicationService{
		DB:       applications,
		Cases:    cases,
		Jurors:   jurors,
		Events:   events,
		Notifier: notifications,
	}
	s.Verdicts = &VerdictService{
		DB:           databases.NewVerdictDatabase(db),
		Cases:        cases,
		Applications: applications,
		Jurors:       jurors,
		Events:       events,
		Notifier:     notifications,
	}
	s.Meetings = &MeetingService{
		DB:           databases.NewMeetingDatabase(db),
		Participants: databases.NewParticipantDatabase(db),
		Incidents:    databases.NewIncidentDatabase(db),
		Recordings:   databases.NewRecordingDatabase(db),
		Cases:        cases,
		Applications: applications,
		Events:       events,
		Notifier:     notifications,
		Realtime:     deps.Realtime,
		Assets:       deps.Assets,
	}
	s.Payments = &PaymentService{
		DB:           databases.NewPaymentDatabase(db),
		Cases:        cases,
		Attorneys:    attorneys,
		Jurors:       jurors,
		Applications: applications,
		Gateway:      deps.Gateway,
		Events:       events,
		Notifier:     notifications,
	}
	s.Calendar = &CalendarService{DB: calendar, Cases: s.Cases}
	s.Documents = &DocumentService{
		DB:     databases.NewDocumentDatabase(db),
		Cases:  cases,
		Assets: deps.Assets,
		Events: events,
	}
	s.Auth = &AuthService{
		Admins:    admins,
		Attorneys: attorneys,
		Jurors:    jurors,
		Attempts:  databases.NewLoginAttemptDatabase(db),
		Resets:    databases.NewPasswordResetDatabase(db),
		Issuer:    deps.Issuer,
		Mailer:    deps.Mailer,
		BaseURL:   deps.BaseURL,
	}
	s.Maintenance = &MaintenanceService{
		Notifications:         databases.NewNotificationDatabase(db),
		NotificationArchive:   databases.NewNotificationArchiveDatabase(db),
		Events:                databases.NewEventDatabase(db),
		EventArchive:          databases.NewEventArchiveDatabase(db),
		Resets:                databases.NewPasswordResetDatabase(db),
		Attempts:              databases.NewLoginAttemptDatabase(db),
		Cases:                 cases,
		Applications:          applications,
		Notifier:              notifications,
		BaseURL:               deps.BaseURL,
		NotificationRetention: deps.NotificationRetention,
		EventRetention:        deps.EventRetention,
	}
	return s
}

func objectIDs(hexes []string) ([]primitive.ObjectID, []string) {
	var ids []primitive.ObjectID
	var bad []string
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			bad = append(bad, h)
			continue
		}
		ids = append(ids, id)
	}
	return ids, bad
}

var now = func() time.Time {
	return time.Now().UTC()
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrID(id primitive.ObjectID) *primitive.ObjectID { return &id }
