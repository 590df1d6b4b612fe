package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const currencyUSD = "usd"

// PaymentService records money moving between attorneys, jurors and the platform
type PaymentService struct {
	DB           databases.PaymentDatabase
	Cases        databases.CaseDatabase
	Attorneys    databases.AttorneyDatabase
	Jurors       databases.JurorDatabase
	Applications databases.ApplicationDatabase
	Gateway      PaymentGateway
	Events       *EventService
	Notifier     *NotificationService
}

// PaymentFilter narrows ListPayments
type PaymentFilter struct {
	CaseID *primitive.ObjectID
	UserID *primitive.ObjectID
	Status string
	Type   string
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// gatewayStatus maps a processor status onto the payment status enum
func gatewayStatus(status string) string {
	switch status {
	case "succeeded", "paid":
		return models.PaymentCompleted
	case "processing":
		return models.PaymentProcessing
	case "canceled":
		return models.PaymentCancelled
	case "failed":
		return models.PaymentFailed
	}
	return models.PaymentPending
}

// openPayment reports whether a payment of this type already exists for the case and user and
// has not failed or been cancelled
func (s *PaymentService) openPayment(ctx context.Context, caseID, userID primitive.ObjectID, paymentType string) (bool, error) {
	n, err := s.DB.CountDocuments(ctx, bson.M{
		"caseId": caseID,
		"userId": userID,
		"type":   paymentType,
		"status": bson.M{"$in": []string{models.PaymentPending, models.PaymentProcessing, models.PaymentCompleted}},
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to check existing payments")
	}
	return n > 0, nil
}

func (s *PaymentService) insert(ctx context.Context, p *models.Payment) error {
	t := now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = t, t
	if p.Status == models.PaymentCompleted {
		p.ProcessedAt = ptrTime(t)
	}
	if _, err := s.DB.InsertOne(ctx, *p); err != nil {
		if mongo.IsDuplicateKeyError(err) && p.Type == models.PaymentTypeRefund {
			return conflict(CodeAlreadyRefunded, "payment was already refunded")
		}
		return errors.Wrap(err, "failed to insert payment")
	}
	return nil
}

func (s *PaymentService) recorded(ctx context.Context, p *models.Payment, actor *Actor) {
	s.Events.Record(ctx, p.CaseID, models.EventPaymentRecorded, fmt.Sprintf("%s %s %.2f", p.Type, p.Status, p.Amount), actor,
		map[string]interface{}{"paymentId": p.ID.Hex(), "amount": p.Amount, "status": p.Status})
	if p.Status != models.PaymentCompleted {
		return
	}
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   p.UserID,
		UserType: p.UserType,
		CaseID:   ptrID(p.CaseID),
		Type:     models.NotificationPaymentProcessed,
		Title:    "Payment processed",
		Message:  fmt.Sprintf("A %s of $%.2f was processed.", strings.ReplaceAll(p.Type, "_", " "), math.Abs(p.Amount)),
		Email:    true,
	})
}

// ChargeAttorney collects the case fee from the case's attorney
func (s *PaymentService) ChargeAttorney(ctx context.Context, caseID primitive.ObjectID, attorney Actor) (*models.Payment, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if c.AttorneyID != attorney.ID {
		return nil, forbidden("case belongs to another attorney")
	}
	if c.PaymentAmount <= 0 {
		return nil, invalid("case has no payment amount")
	}
	open, err := s.openPayment(ctx, caseID, attorney.ID, models.PaymentTypeCaseFee)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, conflict(CodePaymentExists, "case fee was already charged")
	}

	p := &models.Payment{
		CaseID:      caseID,
		UserID:      attorney.ID,
		UserType:    models.UserTypeAttorney,
		Type:        models.PaymentTypeCaseFee,
		Amount:      c.PaymentAmount,
		Currency:    currencyUSD,
		Method:      c.PaymentMethod,
		Status:      models.PaymentPending,
		Description: "Case fee for " + c.Title,
	}
	if s.Gateway != nil && (c.PaymentMethod == "" || c.PaymentMethod == "Stripe") {
		a, err := s.Attorneys.FindOne(ctx, bson.M{"_id": attorney.ID})
		if err != nil {
			return nil, lookup(err, "attorney")
		}
		p.Method = "Stripe"
		extID, status, err := s.Gateway.Charge(ctx, toCents(c.PaymentAmount), currencyUSD, a.StripeCustomerID, p.Description,
			map[string]string{"caseId": caseID.Hex(), "attorneyId": attorney.ID.Hex()})
		if err != nil {
			p.Status, p.FailureReason = models.PaymentFailed, err.Error()
			if ierr := s.insert(ctx, p); ierr != nil {
				zap.S().Errorw("failed to record failed charge", "caseId", caseID.Hex(), "error", ierr)
			}
			return nil, errors.Wrap(err, "charge failed")
		}
		p.ExternalID, p.Status = extID, gatewayStatus(status)
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	s.recorded(ctx, p, &attorney)
	return p, nil
}

// PayJuror pays an approved juror of a completed case
func (s *PaymentService) PayJuror(ctx context.Context, caseID, jurorID primitive.ObjectID, admin Actor, amount float64) (*models.Payment, error) {
	if amount <= 0 {
		return nil, invalid("payout amount must be positive")
	}
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if c.AttorneyStatus != models.AttorneyStatusCompleted {
		return nil, conflict(CodeInvalidTransition, "jurors are paid once the trial is completed")
	}
	n, err := s.Applications.CountDocuments(ctx, bson.M{"caseId": caseID, "jurorId": jurorID, "status": models.ApplicationApproved})
	if err != nil {
		return nil, errors.Wrap(err, "failed to check juror seat")
	}
	if n == 0 {
		return nil, invalid("juror did not serve on this case")
	}
	open, err := s.openPayment(ctx, caseID, jurorID, models.PaymentTypeJurorPayout)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, conflict(CodePaymentExists, "juror was already paid for this case")
	}
	j, err := s.Jurors.FindOne(ctx, bson.M{"_id": jurorID})
	if err != nil {
		return nil, lookup(err, "juror")
	}

	p := &models.Payment{
		CaseID:      caseID,
		UserID:      jurorID,
		UserType:    models.UserTypeJuror,
		Type:        models.PaymentTypeJurorPayout,
		Amount:      amount,
		Currency:    currencyUSD,
		Method:      j.PaymentPreference,
		Status:      models.PaymentPending,
		Description: "Juror payout for " + c.Title,
	}
	if s.Gateway != nil && j.StripeAccountID != "" {
		p.Method = "Stripe"
		extID, err := s.Gateway.Payout(ctx, toCents(amount), currencyUSD, j.StripeAccountID, p.Description)
		if err != nil {
			p.Status, p.FailureReason = models.PaymentFailed, err.Error()
			if ierr := s.insert(ctx, p); ierr != nil {
				zap.S().Errorw("failed to record failed payout", "caseId", caseID.Hex(), "jurorId", jurorID.Hex(), "error", ierr)
			}
			return nil, errors.Wrap(err, "payout failed")
		}
		p.ExternalID, p.Status = extID, models.PaymentCompleted
	}
	if err := s.insert(ctx, p); err != nil {
		return nil, err
	}
	s.recorded(ctx, p, &admin)
	return p, nil
}

// paymentTransitions lists the statuses an admin may move a payment to. Completed, cancelled
// and refunded payments are final.
var paymentTransitions = map[string][]string{
	models.PaymentPending:    {models.PaymentProcessing, models.PaymentCompleted, models.PaymentFailed, models.PaymentCancelled},
	models.PaymentProcessing: {models.PaymentCompleted, models.PaymentFailed},
	models.PaymentFailed:     {models.PaymentPending},
}

func canMovePayment(from, to string) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves a payment to another status. Refunds go through Refund instead.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID primitive.ObjectID, admin Actor, status, reason string) (*models.Payment, error) {
	if !models.IsValidPaymentStatus(status) {
		return nil, invalid(fmt.Sprintf("unknown payment status %q", status))
	}
	if status == models.PaymentRefunded {
		return nil, invalid("use the refund operation to refund a payment")
	}
	p, err := s.DB.FindOne(ctx, bson.M{"_id": paymentID})
	if err != nil {
		return nil, lookup(err, "payment")
	}
	if p.Type == models.PaymentTypeRefund {
		return nil, invalid("refund rows cannot change status")
	}
	if !canMovePayment(p.Status, status) {
		return nil, conflict(CodeInvalidTransition, fmt.Sprintf("payment cannot move from %s to %s", p.Status, status))
	}
	t := now()
	set := bson.M{"status": status, "updatedAt": t}
	if status == models.PaymentCompleted {
		set["processedAt"] = t
		p.ProcessedAt = ptrTime(t)
	}
	if reason != "" {
		set["failureReason"] = reason
		p.FailureReason = reason
	}
	res, err := s.DB.UpdateOne(ctx, bson.M{"_id": paymentID, "status": p.Status}, bson.M{"$set": set})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update payment")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "payment changed while updating it")
	}
	p.Status, p.UpdatedAt = status, t
	s.recorded(ctx, p, &admin)
	return p, nil
}

// Refund returns a completed payment in full. The original row is left as is; the refund is a
// new negative row pointing at it, and a payment is refunded at most once.
func (s *PaymentService) Refund(ctx context.Context, paymentID primitive.ObjectID, admin Actor, reason string) (*models.Payment, error) {
	orig, err := s.DB.FindOne(ctx, bson.M{"_id": paymentID})
	if err != nil {
		return nil, lookup(err, "payment")
	}
	if orig.Type == models.PaymentTypeRefund {
		return nil, invalid("a refund cannot be refunded")
	}
	if orig.Status != models.PaymentCompleted {
		return nil, conflict(CodeInvalidTransition, "only completed payments can be refunded")
	}
	n, err := s.DB.CountDocuments(ctx, bson.M{"originalPaymentId": orig.ID, "type": models.PaymentTypeRefund})
	if err != nil {
		return nil, errors.Wrap(err, "failed to check existing refunds")
	}
	if n > 0 {
		return nil, conflict(CodeAlreadyRefunded, "payment was already refunded")
	}

	r := &models.Payment{
		CaseID:            orig.CaseID,
		UserID:            orig.UserID,
		UserType:          orig.UserType,
		Type:              models.PaymentTypeRefund,
		Amount:            -orig.Amount,
		Currency:          orig.Currency,
		Method:            orig.Method,
		Status:            models.PaymentCompleted,
		OriginalPaymentID: ptrID(orig.ID),
		Description:       strings.TrimSpace("Refund " + reason),
	}
	if s.Gateway != nil && orig.ExternalID != "" {
		extID, err := s.Gateway.Refund(ctx, orig.ExternalID, toCents(orig.Amount))
		if err != nil {
			return nil, errors.Wrap(err, "refund failed")
		}
		r.ExternalID = extID
	}
	if err := s.insert(ctx, r); err != nil {
		return nil, err
	}
	s.recorded(ctx, r, &admin)
	return r, nil
}

// ListPayments pages payments; non-admins only ever see their own
func (s *PaymentService) ListPayments(ctx context.Context, actor Actor, f PaymentFilter, p databases.Paginate) (Page[models.Payment], error) {
	filter := bson.M{}
	if f.CaseID != nil {
		filter["caseId"] = *f.CaseID
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if !actor.IsAdmin() {
		filter["userId"] = actor.ID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	total, err := s.DB.CountDocuments(ctx, filter)
	if err != nil {
		return Page[models.Payment]{}, errors.Wrap(err, "failed to count payments")
	}
	items, err := s.DB.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return Page[models.Payment]{}, errors.Wrap(err, "failed to list payments")
	}
	return Page[models.Payment]{Items: nonNil(items), Total: total, Page: p.Page, Limit: p.Limit}, nil
}
