package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

type fakeGateway struct {
	charged  []int64
	refunded []string
	err      error
}

func (g *fakeGateway) Charge(_ context.Context, amount int64, _, _, _ string, _ map[string]string) (string, string, error) {
	if g.err != nil {
		return "", "", g.err
	}
	g.charged = append(g.charged, amount)
	return "pi_123", "succeeded", nil
}

func (g *fakeGateway) Payout(_ context.Context, _ int64, _, _, _ string) (string, error) {
	return "tr_123", g.err
}

func (g *fakeGateway) Refund(_ context.Context, externalID string, _ int64) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.refunded = append(g.refunded, externalID)
	return "re_123", nil
}

func completedPayment() models.Payment {
	return models.Payment{
		ID:         primitive.NewObjectID(),
		CaseID:     primitive.NewObjectID(),
		UserID:     primitive.NewObjectID(),
		UserType:   models.UserTypeAttorney,
		Type:       models.PaymentTypeCaseFee,
		Amount:     350,
		Currency:   "usd",
		Method:     "Stripe",
		Status:     models.PaymentCompleted,
		ExternalID: "pi_abc",
	}
}

func TestRefundWritesNegativeRow(t *testing.T) {
	gw := &fakeGateway{}
	h := newHarness(t, Deps{Gateway: gw})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	orig := completedPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))
	h.c("payments").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	var stored models.Payment
	h.c("payments").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(models.Payment)
	}).Return(nil, nil)

	r, err := h.svc.Payments.Refund(ctx, orig.ID, admin, "trial cancelled")
	assert.NoError(t, err)
	assert.Equal(t, -350.0, stored.Amount)
	assert.Equal(t, models.PaymentTypeRefund, stored.Type)
	assert.Equal(t, orig.ID, *stored.OriginalPaymentID)
	assert.Equal(t, "re_123", r.ExternalID)
	assert.Equal(t, []string{"pi_abc"}, gw.refunded)
	h.c("payments").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundOnlyOnce(t *testing.T) {
	gw := &fakeGateway{}
	h := newHarness(t, Deps{Gateway: gw})
	orig := completedPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))
	h.c("payments").On("CountDocuments", mock.Anything, filterWith(func(f bson.M) bool {
		return f["originalPaymentId"] == orig.ID
	}), mock.Anything).Return(int64(1), nil)

	_, err := h.svc.Payments.Refund(ctx, orig.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeAlreadyRefunded))
	assert.Empty(t, gw.refunded)
}

func TestRefundRaceCaughtByIndex(t *testing.T) {
	h := newHarness(t, Deps{})
	orig := completedPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))
	h.c("payments").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("payments").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, duplicateKey())

	_, err := h.svc.Payments.Refund(ctx, orig.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeAlreadyRefunded))
}

func TestRefundNeedsCompletedPayment(t *testing.T) {
	h := newHarness(t, Deps{})
	orig := completedPayment()
	orig.Status = models.PaymentPending
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))

	_, err := h.svc.Payments.Refund(ctx, orig.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeInvalidTransition))
}

func TestRefundOfRefund(t *testing.T) {
	h := newHarness(t, Deps{})
	orig := completedPayment()
	orig.Type = models.PaymentTypeRefund
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))

	_, err := h.svc.Payments.Refund(ctx, orig.ID, Actor{Role: models.UserTypeAdmin}, "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRefundGatewayFailureStoresNothing(t *testing.T) {
	h := newHarness(t, Deps{Gateway: &fakeGateway{err: errors.New("card network down")}})
	orig := completedPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(orig))
	h.c("payments").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := h.svc.Payments.Refund(ctx, orig.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.Error(t, err)
	h.c("payments").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestChargeAttorneyThroughGateway(t *testing.T) {
	gw := &fakeGateway{}
	h := newHarness(t, Deps{Gateway: gw})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	c.PaymentAmount = 349.99
	c.PaymentMethod = "Stripe"
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("payments").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("attorneys").On("FindOne", mock.Anything, mock.Anything, mock.Anything).
		Return(found(models.Attorney{ID: attorney.ID, StripeCustomerID: "cus_1"}))
	h.c("payments").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	p, err := h.svc.Payments.ChargeAttorney(ctx, c.ID, attorney)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)
	assert.Equal(t, "pi_123", p.ExternalID)
	assert.NotNil(t, p.ProcessedAt)
	assert.Equal(t, []int64{34999}, gw.charged)
}

func TestChargeAttorneyTwice(t *testing.T) {
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	c.PaymentAmount = 100
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("payments").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := h.svc.Payments.ChargeAttorney(ctx, c.ID, attorney)
	assert.True(t, IsConflict(err, CodePaymentExists))
}

func TestPayJurorNeedsCompletedTrial(t *testing.T) {
	h := newHarness(t, Deps{})
	c := warRoomCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))

	_, err := h.svc.Payments.PayJuror(ctx, c.ID, primitive.NewObjectID(), Actor{Role: models.UserTypeAdmin}, 50)
	assert.True(t, IsConflict(err, CodeInvalidTransition))
}

func TestUpdatePaymentStatusRejectsRefunded(t *testing.T) {
	h := newHarness(t, Deps{})

	_, err := h.svc.Payments.UpdateStatus(ctx, primitive.NewObjectID(), Actor{Role: models.UserTypeAdmin}, models.PaymentRefunded, "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestListPaymentsScopedToUser(t *testing.T) {
	h := newHarness(t, Deps{})
	juror := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeJuror}
	other := primitive.NewObjectID()
	scoped := filterWith(func(f bson.M) bool { return f["userId"] == juror.ID })
	h.c("payments").On("CountDocuments", mock.Anything, scoped, mock.Anything).Return(int64(0), nil)
	h.c("payments").On("Find", mock.Anything, scoped, mock.Anything).Return(cursorOf([]models.Payment{}), nil)

	page, err := h.svc.Payments.ListPayments(ctx, juror, PaymentFilter{UserID: &other}, firstPage())
	assert.NoError(t, err)
	assert.NotNil(t, page.Items)
}

func pendingPayment() models.Payment {
	p := completedPayment()
	p.Status = models.PaymentPending
	p.ExternalID = ""
	return p
}

func TestUpdatePaymentStatus(t *testing.T) {
	h := newHarness(t, Deps{})
	p := pendingPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(p))
	var set bson.M
	h.c("payments").On("UpdateOne", mock.Anything, filterWith(func(f bson.M) bool {
		return f["status"] == models.PaymentPending
	}), mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		set = args.Get(2).(bson.M)["$set"].(bson.M)
	}).Return(updated(1), nil)

	got, err := h.svc.Payments.UpdateStatus(ctx, p.ID, Actor{Role: models.UserTypeAdmin}, models.PaymentCompleted, "")
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, got.Status)
	assert.NotNil(t, got.ProcessedAt)
	assert.Equal(t, models.PaymentCompleted, set["status"])
}

func TestUpdatePaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.PaymentPending, models.PaymentProcessing, true},
		{models.PaymentPending, models.PaymentCancelled, true},
		{models.PaymentProcessing, models.PaymentFailed, true},
		{models.PaymentFailed, models.PaymentPending, true},
		{models.PaymentCompleted, models.PaymentPending, false},
		{models.PaymentCompleted, models.PaymentFailed, false},
		{models.PaymentCancelled, models.PaymentCompleted, false},
		{models.PaymentProcessing, models.PaymentCancelled, false},
		{models.PaymentPending, models.PaymentPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, canMovePayment(tt.from, tt.to), tt.from+" -> "+tt.to)
	}
}

func TestUpdatePaymentStatusCompletedIsFinal(t *testing.T) {
	h := newHarness(t, Deps{})
	p := completedPayment()
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(p))

	_, err := h.svc.Payments.UpdateStatus(ctx, p.ID, Actor{Role: models.UserTypeAdmin}, models.PaymentPending, "")
	assert.True(t, IsConflict(err, CodeInvalidTransition))
	h.c("payments").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePaymentStatusOfRefundRow(t *testing.T) {
	h := newHarness(t, Deps{})
	p := pendingPayment()
	p.Type = models.PaymentTypeRefund
	p.Amount = -350
	h.c("payments").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(p))

	_, err := h.svc.Payments.UpdateStatus(ctx, p.ID, Actor{Role: models.UserTypeAdmin}, models.PaymentFailed, "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	h.c("payments").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
