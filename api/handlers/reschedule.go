package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Reschedule exposes attorney initiated reschedule requests
type Reschedule struct {
	Svc *services.AttorneyRescheduleService
}

type reviewRequest struct {
	Response string `json:"adminResponse"`
}

// RequestHandler files a reschedule request for the calling attorney's case
func (rs Reschedule) RequestHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var in services.RescheduleInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	req, err := rs.Svc.RequestReschedule(ctx, caseID, actor(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// ListHandler lists reschedule requests, filtered by ?caseId= and ?status=
func (rs Reschedule) ListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reqs, err := rs.Svc.ListRescheduleRequests(ctx, queryID(r, "caseId"), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// ApproveHandler moves the case to the requested slot
func (rs Reschedule) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}
	var body reviewRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	req, err := rs.Svc.ApproveReschedule(ctx, id, actor(r), body.Response)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// RejectHandler closes a pending request without moving the case
func (rs Reschedule) RejectHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "request_id")
	if !ok {
		return
	}
	var body reviewRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	req, err := rs.Svc.RejectReschedule(ctx, id, actor(r), body.Response)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
