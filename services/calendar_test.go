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

func TestBlockSlot(t *testing.T) {
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	h.c("admin_calendar").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())
	h.c("admin_calendar").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	var stored models.BlockedSlot
	h.c("admin_calendar").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(models.BlockedSlot)
	}).Return(nil, nil)

	b, err := h.svc.Calendar.BlockSlot(ctx, admin, models.TimeSlot{Date: "2025-03-01", Time: "13:00"}, "court holiday")
	assert.NoError(t, err)
	assert.Equal(t, "13:00:00", b.Time)
	assert.True(t, stored.IsActive)
	assert.Equal(t, admin.ID, stored.BlockedBy)
}

func TestBlockSlotAlreadyBlocked(t *testing.T) {
	h := newHarness(t, Deps{})
	existing := models.BlockedSlot{ID: primitive.NewObjectID(), Date: "2025-03-01", Time: "13:00:00", IsActive: true}
	h.c("admin_calendar").On("FindOne", mock.Anything, filterWith(func(f bson.M) bool {
		return f["time"] == "13:00:00" && f["isActive"] == true
	}), mock.Anything).Return(found(existing))

	b, err := h.svc.Calendar.BlockSlot(ctx, Actor{Role: models.UserTypeAdmin}, models.TimeSlot{Date: "2025-03-01", Time: "13:00"}, "")
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, b.ID)
	h.c("admin_calendar").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestBlockSlotBookedByCase(t *testing.T) {
	h := newHarness(t, Deps{})
	booked := pendingCase(primitive.NewObjectID())
	h.c("admin_calendar").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(booked))

	_, err := h.svc.Calendar.BlockSlot(ctx, Actor{Role: models.UserTypeAdmin}, models.TimeSlot{Date: booked.ScheduledDate, Time: booked.ScheduledTime}, "")
	assert.True(t, IsConflict(err, CodeSlotUnavailable))
}

func TestBlockSlotInvalid(t *testing.T) {
	h := newHarness(t, Deps{})

	_, err := h.svc.Calendar.BlockSlot(ctx, Actor{Role: models.UserTypeAdmin}, models.TimeSlot{Date: "tomorrow", Time: "13:00"}, "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestUnblockSlot(t *testing.T) {
	h := newHarness(t, Deps{})
	id := primitive.NewObjectID()
	h.c("admin_calendar").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(1), nil).Once()
	assert.NoError(t, h.svc.Calendar.UnblockSlot(ctx, id))

	h.c("admin_calendar").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(0), nil).Once()
	assert.True(t, errors.Is(h.svc.Calendar.UnblockSlot(ctx, id), ErrNotFound))
}

func TestListBlockedRange(t *testing.T) {
	h := newHarness(t, Deps{})
	h.c("admin_calendar").On("Find", mock.Anything, filterWith(func(f bson.M) bool {
		rng, ok := f["date"].(bson.M)
		_, hasUpper := rng["$lte"]
		return ok && rng["$gte"] == "2025-03-01" && !hasUpper
	}), mock.Anything).Return(cursorOf([]models.BlockedSlot{}), nil)

	out, err := h.svc.Calendar.ListBlocked(ctx, "2025-03-01", "")
	assert.NoError(t, err)
	assert.NotNil(t, out)
}
