package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Admin exposes account review and on demand maintenance
type Admin struct {
	Auth        *services.AuthService
	Maintenance *services.MaintenanceService
}

// VerifyAccountHandler marks an attorney or juror account verified
func (a Admin) VerifyAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	role := mux.Vars(r)["role"]
	if err := a.Auth.VerifyAccount(ctx, role, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	zap.S().Infow("account verified", "role", role, "userId", id.Hex(), "by", actor(r).ID.Hex())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RetentionHandler runs the archival and auth cleanup sweep now
func (a Admin) RetentionHandler(w http.ResponseWriter, r *http.Request) {
	report := a.Maintenance.RunRetention(r.Context())
	api.ObserveJob("retention_manual", report.OK)
	writeJSON(w, http.StatusOK, report)
}

// RemindersHandler sends the due trial reminders now
func (a Admin) RemindersHandler(w http.ResponseWriter, r *http.Request) {
	sent, ok := a.Maintenance.SendTrialReminders(r.Context())
	api.ObserveJob("trial_reminder_manual", ok)
	writeJSON(w, http.StatusOK, map[string]interface{}{"sent": sent, "ok": ok})
}
