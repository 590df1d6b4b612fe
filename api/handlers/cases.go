package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/scheduling"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Case exposes case scheduling and the case lifecycle
type Case struct {
	Svc    *services.CaseService
	Events *services.EventService
}

type reasonRequest struct {
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
}

type rescheduleOptionsRequest struct {
	Slots  []models.TimeSlot `json:"slots"`
	Reason string            `json:"reason"`
}

type juryChargeRequest struct {
	Questions []models.JuryChargeQuestion `json:"questions"`
}

type voirDireRequest struct {
	Part1 []string `json:"voirDire1Questions"`
	Part2 []string `json:"voirDire2Questions"`
}

// AvailableSlotsHandler lists the open trial start times of a date
func (c Case) AvailableSlotsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	date := r.URL.Query().Get("date")
	slots, err := c.Svc.GetAvailableSlots(ctx, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"date": date, "slots": slots})
}

// SlotAvailabilityHandler answers whether a single date and time can be booked
func (c Case) SlotAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	q := r.URL.Query()
	res, err := c.Svc.CheckSlotAvailability(ctx, q.Get("date"), q.Get("time"), queryID(r, "excludeCaseId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateCaseHandler books a new case for the calling attorney
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var in scheduling.CaseInput
	if !decode(w, r, &in) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	created, err := c.Svc.CreateCase(ctx, actor(r).ID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CasesHandler lists every live case for admins, or the caller's own cases for attorneys
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	a := actor(r)
	var (
		page services.Page[models.Case]
		err  error
	)
	if a.IsAdmin() {
		q := r.URL.Query()
		page, err = c.Svc.GetAllCases(ctx, services.CaseFilter{
			AttorneyStatus:      q.Get("attorneyStatus"),
			AdminApprovalStatus: q.Get("adminApprovalStatus"),
			State:               q.Get("state"),
			Search:              q.Get("search"),
		}, getPage(r))
	} else {
		page, err = c.Svc.GetCasesByAttorney(ctx, a.ID, getPage(r))
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CaseHandler returns one case the caller may see
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := c.Svc.GetCaseFor(ctx, id, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// DeleteCaseHandler soft deletes a case
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Svc.SoftDeleteCase(ctx, id, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TransitionHandler previews whether the case may move to ?status=
func (c Case) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.Svc.ValidateCaseStateTransition(ctx, id, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateStatusHandler applies an attorney or approval status change
func (c Case) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var u services.StatusUpdate
	if !decode(w, r, &u) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.UpdateCaseStatus(ctx, id, actor(r), u)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ApproveCaseHandler approves a pending case
func (c Case) ApproveCaseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body reasonRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.ApproveCase(ctx, id, actor(r), body.Comments)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RejectCaseHandler rejects a pending case
func (c Case) RejectCaseHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body reasonRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.RejectCase(ctx, id, actor(r), body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RequestRescheduleHandler offers the attorney alternative slots for a case
func (c Case) RequestRescheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body rescheduleOptionsRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.RequestReschedule(ctx, id, actor(r), body.Slots, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ConfirmRescheduleHandler moves the case to the slot the attorney picked
func (c Case) ConfirmRescheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var slot models.TimeSlot
	if !decode(w, r, &slot) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.ConfirmReschedule(ctx, id, actor(r), slot)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// JuryChargeHandler replaces the jury charge questions of a case
func (c Case) JuryChargeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body juryChargeRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.SetJuryChargeQuestions(ctx, id, actor(r), body.Questions)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ReleaseJuryChargeHandler opens verdict submission for the case
func (c Case) ReleaseJuryChargeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.ReleaseJuryCharge(ctx, id, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// VoirDireHandler replaces both parts of the voir dire questionnaire
func (c Case) VoirDireHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body voirDireRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Svc.UpdateVoirDire(ctx, id, actor(r), body.Part1, body.Part2)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CaseEventsHandler pages through the audit trail of a case
func (c Case) CaseEventsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := c.Svc.GetCaseFor(ctx, id, actor(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := c.Events.ListForCase(ctx, id, getPage(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
