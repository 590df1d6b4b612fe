package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/scheduling"
)

// AttorneyRescheduleService handles attorneys asking to move an approved case
type AttorneyRescheduleService struct {
	DB       databases.AttorneyRescheduleDatabase
	Cases    *CaseService
	Events   *EventService
	Notifier *NotificationService
}

// RescheduleInput is the attorney's requested slot in their local time
type RescheduleInput struct {
	RequestedDate  string `json:"requestedDate"`
	RequestedTime  string `json:"requestedTime"`
	TimezoneOffset int    `json:"timezoneOffset"`
	Reason         string `json:"reason"`
}

// RequestReschedule files a request to move the case. Only one request per case may be pending.
func (s *AttorneyRescheduleService) RequestReschedule(ctx context.Context, caseID primitive.ObjectID, attorney Actor, in RescheduleInput) (*models.AttorneyRescheduleRequest, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, invalid("a reason is required")
	}
	date, clock, err := scheduling.ToUTC(in.RequestedDate, in.RequestedTime, in.TimezoneOffset)
	if err != nil {
		return nil, invalid("requested date and time are invalid")
	}
	if !scheduling.IsFuture(date, clock, now()) {
		return nil, invalid("requested date and time must be in the future")
	}

	c, err := s.Cases.GetCaseFor(ctx, caseID, attorney)
	if err != nil {
		return nil, err
	}
	if c.AttorneyID != attorney.ID {
		return nil, forbidden("case belongs to another attorney")
	}
	if c.AdminApprovalStatus != models.ApprovalStatusApproved || c.AttorneyStatus != models.AttorneyStatusWarRoom {
		return nil, conflict(CodeInvalidTransition, "only approved cases that have not started can be rescheduled")
	}
	if date == c.ScheduledDate && clock == c.ScheduledTime {
		return nil, invalid("requested slot is the current slot")
	}
	if err := s.Cases.ensureBookable(ctx, date, clock, &c.ID); err != nil {
		return nil, err
	}

	n, err := s.DB.CountDocuments(ctx, bson.M{"caseId": caseID, "status": models.RescheduleStatusPending})
	if err != nil {
		return nil, errors.Wrap(err, "failed to check pending reschedule requests")
	}
	if n > 0 {
		return nil, conflict(CodeRescheduleExists, "a reschedule request is already pending for this case")
	}

	t := now()
	req := models.AttorneyRescheduleRequest{
		ID:            primitive.NewObjectID(),
		CaseID:        caseID,
		AttorneyID:    attorney.ID,
		CurrentDate:   c.ScheduledDate,
		CurrentTime:   c.ScheduledTime,
		RequestedDate: date,
		RequestedTime: clock,
		Reason:        strings.TrimSpace(in.Reason),
		Status:        models.RescheduleStatusPending,
		CreatedAt:     t,
		UpdatedAt:     t,
	}
	if _, err := s.DB.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeRescheduleExists, "a reschedule request is already pending for this case")
		}
		return nil, errors.Wrap(err, "failed to insert reschedule request")
	}

	s.Events.Record(ctx, caseID, models.EventRescheduleRequested, "attorney requested "+date+" "+clock, &attorney,
		map[string]interface{}{"requestId": req.ID.Hex()})
	s.Notifier.notifyAdmins(ctx, NotifyInput{
		CaseID:  ptrID(caseID),
		Type:    models.NotificationSystem,
		Title:   "Reschedule requested",
		Message: fmt.Sprintf("%q asks to move to %s %s UTC: %s", c.Title, date, clock, req.Reason),
	})
	return &req, nil
}

func (s *AttorneyRescheduleService) pending(ctx context.Context, id primitive.ObjectID) (*models.AttorneyRescheduleRequest, error) {
	req, err := s.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, lookup(err, "reschedule request")
	}
	if req.Status != models.RescheduleStatusPending {
		return nil, conflict(CodeRescheduleNotPending, "reschedule request is already "+req.Status)
	}
	return req, nil
}

func (s *AttorneyRescheduleService) close(ctx context.Context, req *models.AttorneyRescheduleRequest, admin Actor, status, response string) error {
	t := now()
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": req.ID, "status": models.RescheduleStatusPending},
		bson.M{"$set": bson.M{"status": status, "adminResponse": response, "reviewedBy": admin.ID, "reviewedAt": t, "updatedAt": t}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to update reschedule request")
	}
	if res.MatchedCount == 0 {
		return conflict(CodeRescheduleNotPending, "reschedule request is no longer pending")
	}
	req.Status, req.AdminResponse = status, response
	req.ReviewedBy, req.ReviewedAt, req.UpdatedAt = ptrID(admin.ID), ptrTime(t), t
	return nil
}

// ApproveReschedule moves the case to the requested slot if it is still free
func (s *AttorneyRescheduleService) ApproveReschedule(ctx context.Context, requestID primitive.ObjectID, admin Actor, response string) (*models.AttorneyRescheduleRequest, error) {
	req, err := s.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}
	c, err := s.Cases.GetCase(ctx, req.CaseID, false)
	if err != nil {
		return nil, err
	}
	if !scheduling.IsFuture(req.RequestedDate, req.RequestedTime, now()) {
		return nil, invalid("requested slot is already in the past")
	}
	if err := s.Cases.ensureBookable(ctx, req.RequestedDate, req.RequestedTime, &c.ID); err != nil {
		return nil, err
	}

	res, err := s.Cases.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false, "scheduledDate": req.CurrentDate, "scheduledTime": req.CurrentTime},
		bson.M{"$set": bson.M{
			"scheduledDate":         req.RequestedDate,
			"scheduledTime":         req.RequestedTime,
			"originalScheduledDate": req.CurrentDate,
			"originalScheduledTime": req.CurrentTime,
			"updatedAt":             now(),
		}, "$unset": bson.M{"reminderSentAt": ""}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", req.RequestedDate, req.RequestedTime))
		}
		return nil, errors.Wrap(err, "failed to move case")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeRescheduleNotPending, "case was moved since the request was made")
	}
	if err := s.close(ctx, req, admin, models.RescheduleStatusApproved, response); err != nil {
		zap.S().Errorw("case moved but reschedule request not closed", "requestId", req.ID.Hex(), "error", err)
	}

	s.Events.Record(ctx, c.ID, models.EventRescheduleConfirmed, "reschedule approved to "+req.RequestedDate+" "+req.RequestedTime, &admin,
		map[string]interface{}{"requestId": req.ID.Hex()})
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   req.AttorneyID,
		UserType: models.UserTypeAttorney,
		CaseID:   ptrID(c.ID),
		Type:     models.NotificationRescheduleConfirmed,
		Title:    "Reschedule approved",
		Message:  fmt.Sprintf("%q now takes place on %s at %s UTC.", c.Title, req.RequestedDate, req.RequestedTime),
		Email:    true,
	})
	return req, nil
}

// RejectReschedule declines the request; the case keeps its slot
func (s *AttorneyRescheduleService) RejectReschedule(ctx context.Context, requestID primitive.ObjectID, admin Actor, response string) (*models.AttorneyRescheduleRequest, error) {
	req, err := s.pending(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.close(ctx, req, admin, models.RescheduleStatusRejected, response); err != nil {
		return nil, err
	}
	msg := "Your reschedule request was declined."
	if response != "" {
		msg += " " + response
	}
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   req.AttorneyID,
		UserType: models.UserTypeAttorney,
		CaseID:   ptrID(req.CaseID),
		Type:     models.NotificationSystem,
		Title:    "Reschedule declined",
		Message:  msg,
		Email:    true,
	})
	return req, nil
}

// ListRescheduleRequests lists requests, optionally by status and case
func (s *AttorneyRescheduleService) ListRescheduleRequests(ctx context.Context, caseID *primitive.ObjectID, status string) ([]models.AttorneyRescheduleRequest, error) {
	filter := bson.M{}
	if caseID != nil {
		filter["caseId"] = *caseID
	}
	if status != "" {
		filter["status"] = status
	}
	out, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reschedule requests")
	}
	return nonNil(out), nil
}
