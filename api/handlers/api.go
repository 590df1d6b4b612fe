package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/config"
	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/gateways"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

const (
	admin    = models.UserTypeAdmin
	attorney = models.UserTypeAttorney
	juror    = models.UserTypeJuror
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Services *services.Services
	Auth     *api.Authenticator
	Hub      *NotificationHub

	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
}

// guard wraps h in the auth middleware and, when roles are given, a role check
func (a *App) guard(h http.HandlerFunc, roles ...string) http.Handler {
	var next http.Handler = h
	if len(roles) > 0 {
		next = api.RequireRole(roles...)(next)
	}
	return a.Auth.Middleware(next)
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := api.New()

	cs := Case{Svc: a.Services.Cases, Events: a.Services.Events}
	rs := Reschedule{Svc: a.Services.Reschedules}
	app := Application{Svc: a.Services.Applications}
	v := Verdict{Svc: a.Services.Verdicts}
	m := Meeting{Svc: a.Services.Meetings, Hub: a.Hub}
	p := Payment{Svc: a.Services.Payments}
	n := Notification{Svc: a.Services.Notifications, Hub: a.Hub}
	cal := Calendar{Svc: a.Services.Calendar}
	d := Document{Svc: a.Services.Documents}
	au := Auth{Svc: a.Services.Auth}
	ad := Admin{Auth: a.Services.Auth, Maintenance: a.Services.Maintenance}

	// websockets live outside the request timeout
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Handle("/notifications", a.guard(n.NotificationsWebSocketHandler)).Methods("GET")
	ws.Handle("/war-room/{case_id}", a.guard(m.WarRoomWebSocketHandler)).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))

	apiCreate.HandleFunc("/auth/attorney/register", au.RegisterAttorneyHandler).Methods("POST")
	apiCreate.HandleFunc("/auth/juror/register", au.RegisterJurorHandler).Methods("POST")
	apiCreate.HandleFunc("/auth/reset-password", au.ResetPasswordHandler).Methods("POST")
	apiCreate.HandleFunc("/auth/{role}/login", au.LoginHandler).Methods("POST")
	apiCreate.HandleFunc("/auth/{role}/forgot-password", au.ForgotPasswordHandler).Methods("POST")

	apiCreate.Handle("/slots", a.guard(cs.AvailableSlotsHandler)).Methods("GET")
	apiCreate.Handle("/slots/availability", a.guard(cs.SlotAvailabilityHandler)).Methods("GET")

	apiCreate.Handle("/cases", a.guard(cs.CreateCaseHandler, attorney)).Methods("POST")
	apiCreate.Handle("/cases", a.guard(cs.CasesHandler, admin, attorney)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.guard(cs.CaseHandler)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}", a.guard(cs.DeleteCaseHandler, admin, attorney)).Methods("DELETE")
	apiCreate.Handle("/cases/{case_id}/transition", a.guard(cs.TransitionHandler, admin, attorney)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/status", a.guard(cs.UpdateStatusHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/approve", a.guard(cs.ApproveCaseHandler, admin)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/reject", a.guard(cs.RejectCaseHandler, admin)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/reschedule-request", a.guard(cs.RequestRescheduleHandler, admin)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/confirm-reschedule", a.guard(cs.ConfirmRescheduleHandler, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/jury-charge", a.guard(cs.JuryChargeHandler, admin, attorney)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/jury-charge/release", a.guard(cs.ReleaseJuryChargeHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/voir-dire", a.guard(cs.VoirDireHandler, admin, attorney)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/events", a.guard(cs.CaseEventsHandler, admin, attorney)).Methods("GET")

	apiCreate.Handle("/cases/{case_id}/reschedule-requests", a.guard(rs.RequestHandler, attorney)).Methods("POST")
	apiCreate.Handle("/reschedule-requests", a.guard(rs.ListHandler, admin)).Methods("GET")
	apiCreate.Handle("/reschedule-requests/{request_id}/approve", a.guard(rs.ApproveHandler, admin)).Methods("POST")
	apiCreate.Handle("/reschedule-requests/{request_id}/reject", a.guard(rs.RejectHandler, admin)).Methods("POST")

	apiCreate.Handle("/cases/{case_id}/applications", a.guard(app.ApplyHandler, juror)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/applications", a.guard(app.CaseApplicationsHandler, admin, attorney)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/applications/mine", a.guard(app.HasAppliedHandler, juror)).Methods("GET")
	apiCreate.Handle("/applications/mine", a.guard(app.MyApplicationsHandler, juror)).Methods("GET")
	apiCreate.Handle("/applications/batch-approve", a.guard(app.BatchApproveHandler, admin)).Methods("POST")
	apiCreate.Handle("/applications/batch-reject", a.guard(app.BatchRejectHandler, admin)).Methods("POST")
	apiCreate.Handle("/applications/{application_id}", a.guard(app.UpdateStatusHandler)).Methods("PATCH")
	apiCreate.Handle("/jurors/available-cases", a.guard(app.AvailableCasesHandler, juror)).Methods("GET")

	apiCreate.Handle("/cases/{case_id}/verdicts/draft", a.guard(v.SaveDraftHandler, juror)).Methods("PUT")
	apiCreate.Handle("/cases/{case_id}/verdicts", a.guard(v.SubmitHandler, juror)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/verdicts", a.guard(v.VerdictsHandler, admin, attorney)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/verdicts/mine", a.guard(v.MyVerdictHandler, juror)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/verdicts/results", a.guard(v.ResultsHandler, admin, attorney)).Methods("GET")

	apiCreate.Handle("/cases/{case_id}/meeting", a.guard(m.ActiveMeetingHandler)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/meeting", a.guard(m.CreateMeetingHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/meeting/join", a.guard(m.JoinMeetingHandler)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/meeting/leave", a.guard(m.LeaveMeetingHandler)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/meeting/end", a.guard(m.EndMeetingHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/meeting/participants", a.guard(m.ParticipantsHandler)).Methods("GET")
	apiCreate.Handle("/cases/{case_id}/incidents", a.guard(m.ReportIncidentHandler)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/incidents", a.guard(m.IncidentsHandler, admin)).Methods("GET")
	apiCreate.Handle("/incidents/{incident_id}/resolve", a.guard(m.ResolveIncidentHandler, admin)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/recordings", a.guard(m.AddRecordingHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/recordings", a.guard(m.RecordingsHandler)).Methods("GET")
	apiCreate.Handle("/recordings/{recording_id}", a.guard(m.DeleteRecordingHandler, admin)).Methods("DELETE")

	apiCreate.Handle("/cases/{case_id}/payments/charge", a.guard(p.ChargeHandler, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/payouts", a.guard(p.PayoutHandler, admin)).Methods("POST")
	apiCreate.Handle("/payments", a.guard(p.PaymentsHandler)).Methods("GET")
	apiCreate.Handle("/payments/{payment_id}", a.guard(p.UpdateStatusHandler, admin)).Methods("PATCH")
	apiCreate.Handle("/payments/{payment_id}/refund", a.guard(p.RefundHandler, admin)).Methods("POST")

	apiCreate.Handle("/notifications", a.guard(n.NotificationsHandler)).Methods("GET")
	apiCreate.Handle("/notifications/unread-count", a.guard(n.UnreadCountHandler)).Methods("GET")
	apiCreate.Handle("/notifications/read-all", a.guard(n.MarkAllReadHandler)).Methods("POST")
	apiCreate.Handle("/notifications/{notification_id}/read", a.guard(n.MarkReadHandler)).Methods("POST")

	apiCreate.Handle("/calendar/blocks", a.guard(cal.BlockSlotHandler, admin)).Methods("POST")
	apiCreate.Handle("/calendar/blocks", a.guard(cal.BlockedSlotsHandler, admin)).Methods("GET")
	apiCreate.Handle("/calendar/blocks/{block_id}", a.guard(cal.UnblockSlotHandler, admin)).Methods("DELETE")

	apiCreate.Handle("/cases/{case_id}/documents/signature", a.guard(d.UploadSignatureHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/documents", a.guard(d.AddDocumentHandler, admin, attorney)).Methods("POST")
	apiCreate.Handle("/cases/{case_id}/documents", a.guard(d.DocumentsHandler)).Methods("GET")
	apiCreate.Handle("/documents/{document_id}", a.guard(d.DeleteDocumentHandler, admin, attorney)).Methods("DELETE")

	apiCreate.Handle("/admin/accounts/{role}/{user_id}/verify", a.guard(ad.VerifyAccountHandler, admin)).Methods("POST")
	apiCreate.Handle("/admin/maintenance/retention", a.guard(ad.RetentionHandler, admin)).Methods("POST")
	apiCreate.Handle("/admin/maintenance/reminders", a.guard(ad.RemindersHandler, admin)).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, models.ErrorResponse{Error: "route not found", Code: "NOT_FOUND"})
	})

	return r
}

// Wire builds the services over db and the configured outside collaborators
func (a *App) Wire(db databases.DatabaseHelper) error {
	a.dbHelper = db
	a.Auth = api.NewAuthenticator(a.Config.JWTSecret, api.DefaultTokenTTL)
	a.Hub = NewNotificationHub()

	deps := services.Deps{
		Realtime:              a.Hub,
		Issuer:                a.Auth.NewToken,
		BaseURL:               a.Config.BaseURL,
		NotificationRetention: time.Duration(a.Config.NotificationRetentionDays) * 24 * time.Hour,
		EventRetention:        time.Duration(a.Config.EventRetentionDays) * 24 * time.Hour,
	}
	if a.Config.StripeKey != "" {
		deps.Gateway = gateways.NewStripe(a.Config.StripeKey)
	} else {
		zap.S().Warn("stripe secret key is not set, payments are recorded without a processor")
	}
	if a.Config.SendgridAPIKey != "" {
		deps.Mailer = gateways.NewSendGrid(a.Config.SendgridAPIKey, a.Config.MailFrom)
	} else {
		zap.S().Warn("sendgrid api key is not set, emails are skipped")
	}
	if a.Config.CloudinaryURL != "" {
		cld, err := gateways.NewCloudinary(a.Config.CloudinaryURL)
		if err != nil {
			return errors.Wrap(err, "failed to configure cloudinary")
		}
		deps.Assets = cld
	} else {
		zap.S().Warn("cloudinary url is not set, document uploads are disabled")
	}

	a.Services = services.New(db, deps)
	a.Router = a.New()
	return nil
}

// Initialize connects to the database, wires the services and builds the router
func (a *App) Initialize() error {
	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	a.client = client
	zap.S().Info("quickverdicts-api has connected to the database")

	return a.Wire(databases.NewDatabase(&a.Config, client))
}

// DB returns the database the app is wired to
func (a *App) DB() databases.DatabaseHelper {
	return a.dbHelper
}

// Close disconnects from the database
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}
