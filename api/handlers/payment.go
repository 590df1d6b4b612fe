package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/api"
	"github.com/RupeshSangoju/quickverdicts-sub001/services"
)

// Payment exposes case fees, juror payouts and refunds
type Payment struct {
	Svc *services.PaymentService
}

type payoutRequest struct {
	JurorID string  `json:"jurorId"`
	Amount  float64 `json:"amount"`
}

type paymentStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ChargeHandler charges the calling attorney the case fee
func (p Payment) ChargeHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pay, err := p.Svc.ChargeAttorney(ctx, caseID, actor(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pay)
}

// PayoutHandler pays a juror who served on a completed trial
func (p Payment) PayoutHandler(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r, "case_id")
	if !ok {
		return
	}
	var body payoutRequest
	if !decode(w, r, &body) {
		return
	}
	jurorID, err := primitive.ObjectIDFromHex(body.JurorID)
	if err != nil {
		writeServiceError(w, r, &services.ValidationError{Messages: []string{"a valid juror id is required"}})
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pay, err := p.Svc.PayJuror(ctx, caseID, jurorID, actor(r), body.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pay)
}

// UpdateStatusHandler moves a payment between pending, completed and failed
func (p Payment) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment_id")
	if !ok {
		return
	}
	var body paymentStatusRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pay, err := p.Svc.UpdateStatus(ctx, id, actor(r), body.Status, body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pay)
}

// RefundHandler refunds a completed payment once
func (p Payment) RefundHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment_id")
	if !ok {
		return
	}
	var body reasonRequest
	if !decode(w, r, &body) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	pay, err := p.Svc.Refund(ctx, id, actor(r), body.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pay)
}

// PaymentsHandler lists payments. Non admins only ever see their own.
func (p Payment) PaymentsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	q := r.URL.Query()
	page, err := p.Svc.ListPayments(ctx, actor(r), services.PaymentFilter{
		CaseID: queryID(r, "caseId"),
		UserID: queryID(r, "userId"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}, getPage(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
