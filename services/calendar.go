package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/scheduling"
)

// CalendarService lets admins take slots off the trial calendar
type CalendarService struct {
	DB    databases.CalendarDatabase
	Cases *CaseService
}

// BlockSlot removes a free slot from the calendar. Blocking an already blocked slot returns the
// existing block.
func (s *CalendarService) BlockSlot(ctx context.Context, admin Actor, slot models.TimeSlot, reason string) (*models.BlockedSlot, error) {
	slot, err := scheduling.NormalizeSlot(slot)
	if err != nil {
		return nil, invalid(err.Error())
	}
	existing, err := s.DB.FindOne(ctx, bson.M{"date": slot.Date, "time": slot.Time, "isActive": true})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(err, "failed to load blocked slot")
	}

	avail, err := s.Cases.CheckSlotAvailability(ctx, slot.Date, slot.Time, nil)
	if err != nil {
		return nil, err
	}
	if avail.ConflictingCaseID != "" {
		return nil, conflict(CodeSlotUnavailable, "slot is booked by case "+avail.ConflictingCaseID)
	}

	t := now()
	b := models.BlockedSlot{
		ID:        primitive.NewObjectID(),
		Date:      slot.Date,
		Time:      slot.Time,
		Reason:    reason,
		BlockedBy: admin.ID,
		IsActive:  true,
		CreatedAt: t,
		UpdatedAt: t,
	}
	if _, err := s.DB.InsertOne(ctx, b); err != nil {
		return nil, errors.Wrap(err, "failed to block slot")
	}
	return &b, nil
}

// UnblockSlot returns a blocked slot to the calendar; the record stays inactive
func (s *CalendarService) UnblockSlot(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now()}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to unblock slot")
	}
	if res.MatchedCount == 0 {
		return notFound("blocked slot")
	}
	return nil
}

// ListBlocked lists active blocks between two dates, inclusive; empty bounds are open
func (s *CalendarService) ListBlocked(ctx context.Context, from, to string) ([]models.BlockedSlot, error) {
	filter := bson.M{"isActive": true}
	rng := bson.M{}
	if from != "" {
		rng["$gte"] = from
	}
	if to != "" {
		rng["$lte"] = to
	}
	if len(rng) > 0 {
		filter["date"] = rng
	}
	out, err := s.DB.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list blocked slots")
	}
	return nonNil(out), nil
}
