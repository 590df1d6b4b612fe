package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// caseByID matches the plain lookup of a case, not the slot check that excludes it
func caseByID(id primitive.ObjectID) interface{} {
	return filterWith(func(f bson.M) bool { return f["_id"] == id })
}

func excluding(id primitive.ObjectID) interface{} {
	return filterWith(func(f bson.M) bool {
		ne, ok := f["_id"].(bson.M)
		return ok && ne["$ne"] == id
	})
}

func moveInput() RescheduleInput {
	return RescheduleInput{RequestedDate: "2025-03-05", RequestedTime: "09:00", Reason: "expert witness unavailable"}
}

func TestAttorneyRequestReschedule(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))
	h.c("cases").On("FindOne", mock.Anything, excluding(c.ID), mock.Anything).Return(missing())
	h.c("admin_calendar").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("attorney_reschedule_requests").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("attorney_reschedule_requests").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	req, err := h.svc.Reschedules.RequestReschedule(ctx, c.ID, attorney, moveInput())
	assert.NoError(t, err)
	assert.Equal(t, models.RescheduleStatusPending, req.Status)
	assert.Equal(t, "09:00:00", req.RequestedTime)
	assert.Equal(t, c.ScheduledDate, req.CurrentDate)
}

func TestAttorneyRequestRescheduleAlreadyPending(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))
	h.c("cases").On("FindOne", mock.Anything, excluding(c.ID), mock.Anything).Return(missing())
	h.c("admin_calendar").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("attorney_reschedule_requests").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := h.svc.Reschedules.RequestReschedule(ctx, c.ID, attorney, moveInput())
	assert.True(t, IsConflict(err, CodeRescheduleExists))
	h.c("attorney_reschedule_requests").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttorneyRequestRescheduleInput(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))

	tests := []struct {
		name string
		in   RescheduleInput
	}{
		{"no reason", RescheduleInput{RequestedDate: "2025-03-05", RequestedTime: "09:00"}},
		{"bad date", RescheduleInput{RequestedDate: "March 5th", RequestedTime: "09:00", Reason: "x"}},
		{"in the past", RescheduleInput{RequestedDate: "2025-01-05", RequestedTime: "09:00", Reason: "x"}},
		{"current slot", RescheduleInput{RequestedDate: "2025-03-01", RequestedTime: "16:00", Reason: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Reschedules.RequestReschedule(ctx, c.ID, attorney, tt.in)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestAttorneyRequestRescheduleAfterTrialStarted(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := trialCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))

	_, err := h.svc.Reschedules.RequestReschedule(ctx, c.ID, attorney, moveInput())
	assert.True(t, IsConflict(err, CodeInvalidTransition))
}

func pendingMove(c models.Case) models.AttorneyRescheduleRequest {
	return models.AttorneyRescheduleRequest{
		ID:            primitive.NewObjectID(),
		CaseID:        c.ID,
		AttorneyID:    c.AttorneyID,
		CurrentDate:   c.ScheduledDate,
		CurrentTime:   c.ScheduledTime,
		RequestedDate: "2025-03-05",
		RequestedTime: "09:00:00",
		Reason:        "expert witness unavailable",
		Status:        models.RescheduleStatusPending,
	}
}

func TestApproveRescheduleMovesCase(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := warRoomCase(primitive.NewObjectID())
	req := pendingMove(c)
	h.c("attorney_reschedule_requests").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(req))
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))
	h.c("cases").On("FindOne", mock.Anything, excluding(c.ID), mock.Anything).Return(missing())
	h.c("admin_calendar").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	var set bson.M
	h.c("cases").On("UpdateOne", mock.Anything, filterWith(func(f bson.M) bool {
		return f["scheduledDate"] == c.ScheduledDate && f["scheduledTime"] == c.ScheduledTime
	}), mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		set = args.Get(2).(bson.M)["$set"].(bson.M)
	}).Return(updated(1), nil)
	h.c("attorney_reschedule_requests").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(1), nil)

	got, err := h.svc.Reschedules.ApproveReschedule(ctx, req.ID, admin, "approved")
	assert.NoError(t, err)
	assert.Equal(t, models.RescheduleStatusApproved, got.Status)
	assert.Equal(t, "2025-03-05", set["scheduledDate"])
	assert.Equal(t, c.ScheduledTime, set["originalScheduledTime"])
	h.c("notifications").AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestApproveRescheduleSlotTakenMeanwhile(t *testing.T) {
	freezeTime(t, caseNow)
	h := newHarness(t, Deps{})
	c := warRoomCase(primitive.NewObjectID())
	req := pendingMove(c)
	h.c("attorney_reschedule_requests").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(req))
	h.c("cases").On("FindOne", mock.Anything, caseByID(c.ID), mock.Anything).Return(found(c))
	h.c("cases").On("FindOne", mock.Anything, excluding(c.ID), mock.Anything).Return(missing())
	h.c("admin_calendar").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	h.c("cases").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, duplicateKey())

	_, err := h.svc.Reschedules.ApproveReschedule(ctx, req.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeSlotUnavailable))
	h.c("attorney_reschedule_requests").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveRescheduleNotPending(t *testing.T) {
	h := newHarness(t, Deps{})
	req := pendingMove(warRoomCase(primitive.NewObjectID()))
	req.Status = models.RescheduleStatusRejected
	h.c("attorney_reschedule_requests").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(req))

	_, err := h.svc.Reschedules.ApproveReschedule(ctx, req.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeRescheduleNotPending))
}

func TestRejectReschedule(t *testing.T) {
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	req := pendingMove(warRoomCase(primitive.NewObjectID()))
	h.c("attorney_reschedule_requests").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(req))
	h.c("attorney_reschedule_requests").On("UpdateOne", mock.Anything, filterWith(func(f bson.M) bool {
		return f["status"] == models.RescheduleStatusPending
	}), mock.Anything, mock.Anything).Return(updated(1), nil)

	got, err := h.svc.Reschedules.RejectReschedule(ctx, req.ID, admin, "calendar is full that week")
	assert.NoError(t, err)
	assert.Equal(t, models.RescheduleStatusRejected, got.Status)
	assert.Equal(t, admin.ID, *got.ReviewedBy)
	h.c("cases").AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectRescheduleClosedConcurrently(t *testing.T) {
	h := newHarness(t, Deps{})
	req := pendingMove(warRoomCase(primitive.NewObjectID()))
	h.c("attorney_reschedule_requests").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(req))
	h.c("attorney_reschedule_requests").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(0), nil)

	_, err := h.svc.Reschedules.RejectReschedule(ctx, req.ID, Actor{Role: models.UserTypeAdmin}, "")
	assert.True(t, IsConflict(err, CodeRescheduleNotPending))
}
