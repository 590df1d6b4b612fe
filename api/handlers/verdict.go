package handlers

import (
	"net/http"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Verdict exposes juror verdict forms and their results
type Verdict struct {
	Svc *services.VerdictService
}

type verdictRequest struct {
	Responses map[string]string `json:"responses"`
}

// SaveDraftHandler stores the juror's unfinished answers
func (v Verdict) SaveDraftHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body verdictRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	draft, err := v.Svc.SaveDraft(ctx, caseID, actor(r).ID, body.Responses)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// SubmitHandler submits the juror's final verdict; a second submission is rejected
func (v Verdict) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body verdictRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	submitted, err := v.Svc.SubmitVerdict(ctx, caseID, actor(r).ID, body.Responses)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitted)
}

// MyVerdictHandler returns the juror's own draft or submitted verdict
func (v Verdict) MyVerdictHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	mine, err := v.Svc.GetMyVerdict(ctx, caseID, actor(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mine)
}

// VerdictsHandler lists the submitted verdicts of a case
func (v Verdict) VerdictsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := v.Svc.GetVerdictsForCase(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ResultsHandler returns the per question aggregate of submitted verdicts
func (v Verdict) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := v.Svc.GetAggregatedResults(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
