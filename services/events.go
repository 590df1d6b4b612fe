package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// EventService appends to the per-case audit log
type EventService struct {
	DB databases.EventDatabase
}

// Record appends an event. Failures are logged and reported as false, never returned.
func (s *EventService) Record(ctx context.Context, caseID primitive.ObjectID, eventType, description string, actor *Actor, metadata map[string]interface{}) bool {
	if s == nil || s.DB == nil {
		return false
	}
	ev := models.Event{
		ID:          primitive.NewObjectID(),
		CaseID:      caseID,
		Type:        eventType,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   now(),
	}
	if actor != nil {
		ev.ActorID = ptrID(actor.ID)
		ev.ActorType = actor.Role
	}
	if _, err := s.DB.InsertOne(ctx, ev); err != nil {
		zap.S().Errorw("failed to record case event", "caseId", caseID.Hex(), "eventType", eventType, "error", err)
		return false
	}
	return true
}

// ListForCase returns a case's events newest first
func (s *EventService) ListForCase(ctx context.Context, caseID primitive.ObjectID, p databases.Paginate) (Page[models.Event], error) {
	filter := bson.M{"caseId": caseID}
	total, err := s.DB.CountDocuments(ctx, filter)
	if err != nil {
		return Page[models.Event]{}, errors.Wrap(err, "failed to count events")
	}
	items, err := s.DB.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return Page[models.Event]{}, errors.Wrap(err, "failed to list events")
	}
	if items == nil {
		items = []models.Event{}
	}
	return Page[models.Event]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
}
