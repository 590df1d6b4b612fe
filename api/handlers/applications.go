package handlers

import (
	"context"
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Application exposes juror applications and their review
type Application struct {
	Svc *services.ApplicationService
}

type applicationStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"reviewNotes"`
}

type batchRequest struct {
	ApplicationIDs []string `json:"applicationIds"`
	Notes          string   `json:"reviewNotes"`
}

// ApplyHandler files the calling juror's application for a case
func (a Application) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var in services.ApplicationInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	app, err := a.Svc.CreateApplication(ctx, actor(r).ID, caseID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// HasAppliedHandler reports whether the calling juror applied to a case
func (a Application) HasAppliedHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	applied, err := a.Svc.HasJurorApplied(ctx, actor(r).ID, caseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasApplied": applied})
}

// CaseApplicationsHandler lists the applications of a case, optionally by ?status=
func (a Application) CaseApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	apps, err := a.Svc.GetApplicationsForCase(ctx, caseID, actor(r), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// MyApplicationsHandler lists the calling juror's applications
func (a Application) MyApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	apps, err := a.Svc.GetApplicationsForJuror(ctx, actor(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// AvailableCasesHandler lists the cases the calling juror can still apply to
func (a Application) AvailableCasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := a.Svc.GetAvailableCasesForJurors(ctx, actor(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// UpdateStatusHandler approves, rejects or withdraws one application
func (a Application) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "application_id")
	if !ok {
		return
	}
	var body applicationStatusRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	app, err := a.Svc.UpdateApplicationStatus(ctx, id, actor(r), body.Status, body.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// BatchApproveHandler approves many applications in one call
func (a Application) BatchApproveHandler(w http.ResponseWriter, r *http.Request) {
	a.batch(w, r, a.Svc.BatchApproveApplications)
}

// BatchRejectHandler rejects many applications in one call
func (a Application) BatchRejectHandler(w http.ResponseWriter, r *http.Request) {
	a.batch(w, r, a.Svc.BatchRejectApplications)
}

func (a Application) batch(w http.ResponseWriter, r *http.Request, run func(context.Context, services.Actor, []string, string) (services.BatchResult, error)) {
	var body batchRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := run(ctx, actor(r), body.ApplicationIDs, body.Notes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
