package services

import (
	"context"
	"fmt"
	"regexp"
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

// CaseService owns case scheduling and the case lifecycle
type CaseService struct {
	Cases        databases.CaseDatabase
	Attorneys    databases.AttorneyDatabase
	Applications databases.ApplicationDatabase
	Calendar     databases.CalendarDatabase
	Reschedules  databases.CaseRescheduleDatabase
	Events       *EventService
	Notifier     *NotificationService
}

// SlotAvailability is the answer to a slot query
type SlotAvailability struct {
	Date              string `json:"date"`
	Time              string `json:"time"`
	Available         bool   `json:"available"`
	ConflictingCaseID string `json:"conflictingCaseId,omitempty"`
	Blocked           bool   `json:"blocked,omitempty"`
}

// slotFilter matches cases occupying a slot
func slotFilter(date, clock string) bson.M {
	return bson.M{
		"scheduledDate":       date,
		"scheduledTime":       clock,
		"isDeleted":           false,
		"adminApprovalStatus": bson.M{"$in": []string{models.ApprovalStatusPending, models.ApprovalStatusApproved}},
	}
}

// CheckSlotAvailability reports whether another live case already holds (date, time)
// or an admin blocked it. excludeID leaves that case out of the check.
func (s *CaseService) CheckSlotAvailability(ctx context.Context, date, clock string, excludeID *primitive.ObjectID) (SlotAvailability, error) {
	slot, err := scheduling.NormalizeSlot(models.TimeSlot{Date: date, Time: clock})
	if err != nil {
		return SlotAvailability{}, invalid(err.Error())
	}
	filter := slotFilter(slot.Date, slot.Time)
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}
	res := SlotAvailability{Date: slot.Date, Time: slot.Time}
	other, err := s.Cases.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		blocked, err := s.isBlocked(ctx, slot.Date, slot.Time)
		if err != nil {
			return SlotAvailability{}, err
		}
		res.Blocked = blocked
		res.Available = !blocked
		return res, nil
	}
	if err != nil {
		return SlotAvailability{}, errors.Wrap(err, "failed to check slot availability")
	}
	res.ConflictingCaseID = other.ID.Hex()
	return res, nil
}

// isBlocked reports whether an admin removed the slot from the calendar
func (s *CaseService) isBlocked(ctx context.Context, date, clock string) (bool, error) {
	if s.Calendar == nil {
		return false, nil
	}
	n, err := s.Calendar.CountDocuments(ctx, bson.M{"date": date, "time": clock, "isActive": true})
	if err != nil {
		return false, errors.Wrap(err, "failed to check blocked slots")
	}
	return n > 0, nil
}

// ensureBookable fails with SLOT_UNAVAILABLE unless the slot is free and not blocked
func (s *CaseService) ensureBookable(ctx context.Context, date, clock string, excludeID *primitive.ObjectID) error {
	avail, err := s.CheckSlotAvailability(ctx, date, clock, excludeID)
	if err != nil {
		return err
	}
	if avail.Blocked {
		return conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is blocked on the calendar", avail.Date, avail.Time))
	}
	if !avail.Available {
		return conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", avail.Date, avail.Time))
	}
	return nil
}

// GetAvailableSlots lists the free hourly slots of a UTC day
func (s *CaseService) GetAvailableSlots(ctx context.Context, date string) ([]string, error) {
	if _, err := scheduling.ParseSlot(date, "00:00"); err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	filter := slotFilter(date, "")
	delete(filter, "scheduledTime")
	booked, err := s.Cases.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load booked slots")
	}
	taken := map[string]bool{}
	for _, c := range booked {
		taken[c.ScheduledTime] = true
	}
	if s.Calendar != nil {
		blocked, err := s.Calendar.Find(ctx, bson.M{"date": date, "isActive": true})
		if err != nil {
			return nil, errors.Wrap(err, "failed to load blocked slots")
		}
		for _, b := range blocked {
			taken[b.Time] = true
		}
	}

	t := now()
	free := []string{}
	for _, slot := range scheduling.DaySlots() {
		if taken[slot] || !scheduling.IsFuture(date, slot, t) {
			continue
		}
		free = append(free, slot)
	}
	return free, nil
}

// CreateCase validates an attorney's submission, converts its slot to UTC and stores it pending
func (s *CaseService) CreateCase(ctx context.Context, attorneyID primitive.ObjectID, in scheduling.CaseInput) (*models.Case, error) {
	msgs := scheduling.ValidateCaseInput(in, now())
	msgs = append(msgs, scheduling.ValidateQuestions(in.JuryChargeQuestions)...)
	if len(msgs) > 0 {
		return nil, invalid(msgs...)
	}

	attorney, err := s.Attorneys.FindOne(ctx, bson.M{"_id": attorneyID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "attorney")
	}
	if !attorney.IsVerified {
		return nil, forbidden("attorney account is not verified")
	}

	date, clock, err := scheduling.ToUTC(in.ScheduledDate, in.ScheduledTime, in.TimezoneOffset)
	if err != nil {
		return nil, invalid(err.Error())
	}
	if err := s.ensureBookable(ctx, date, clock, nil); err != nil {
		return nil, err
	}

	t := now()
	c := models.Case{
		ID:                  primitive.NewObjectID(),
		AttorneyID:          attorneyID,
		CaseType:            in.CaseType,
		Jurisdiction:        in.Jurisdiction,
		Tier:                in.Tier,
		State:               strings.TrimSpace(in.State),
		County:              strings.TrimSpace(in.County),
		Title:               strings.TrimSpace(in.Title),
		Description:         strings.TrimSpace(in.Description),
		ScheduledDate:       date,
		ScheduledTime:       clock,
		TimeZone:            in.TimeZone,
		TimezoneOffset:      in.TimezoneOffset,
		PaymentAmount:       in.PaymentAmount,
		PaymentMethod:       in.PaymentMethod,
		RequiredJurors:      in.RequiredJurors,
		PlaintiffGroups:     nonNil(in.PlaintiffGroups),
		DefendantGroups:     nonNil(in.DefendantGroups),
		VoirDire1Questions:  nonNil(in.VoirDire1Questions),
		VoirDire2Questions:  nonNil(in.VoirDire2Questions),
		JuryChargeQuestions: nonNil(in.JuryChargeQuestions),
		JuryChargeStatus:    models.JuryChargePending,
		AttorneyStatus:      models.AttorneyStatusPending,
		AdminApprovalStatus: models.ApprovalStatusPending,
		SlotHeld:            true,
		CreatedAt:           t,
		UpdatedAt:           t,
	}
	if _, err := s.Cases.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", date, clock))
		}
		return nil, errors.Wrap(err, "failed to insert case")
	}

	actor := &Actor{ID: attorneyID, Role: models.UserTypeAttorney}
	s.Events.Record(ctx, c.ID, models.EventCaseCreated, "case submitted for review", actor, nil)
	s.Notifier.notifyAdmins(ctx, NotifyInput{
		CaseID:  ptrID(c.ID),
		Type:    models.NotificationCaseSubmitted,
		Title:   "New case submitted",
		Message: fmt.Sprintf("%s submitted %q for %s %s UTC", attorney.FullName(), c.Title, c.ScheduledDate, c.ScheduledTime),
	})
	return &c, nil
}

// GetCase loads a case. Deleted cases are only returned when includeDeleted is set.
func (s *CaseService) GetCase(ctx context.Context, id primitive.ObjectID, includeDeleted bool) (*models.Case, error) {
	filter := bson.M{"_id": id}
	if !includeDeleted {
		filter["isDeleted"] = false
	}
	c, err := s.Cases.FindOne(ctx, filter)
	if err != nil {
		return nil, lookup(err, "case")
	}
	return c, nil
}

// GetCaseFor loads a live case the actor may see: admins see all, attorneys their own
func (s *CaseService) GetCaseFor(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Case, error) {
	c, err := s.GetCase(ctx, id, actor.IsAdmin())
	if err != nil {
		return nil, err
	}
	if actor.Role == models.UserTypeAttorney && c.AttorneyID != actor.ID {
		return nil, forbidden("case belongs to another attorney")
	}
	return c, nil
}

// CaseFilter narrows GetAllCases
type CaseFilter struct {
	AttorneyStatus      string
	AdminApprovalStatus string
	State               string
	Search              string
}

// GetAllCases lists live cases for admins
func (s *CaseService) GetAllCases(ctx context.Context, f CaseFilter, p databases.Paginate) (Page[models.Case], error) {
	filter := bson.M{"isDeleted": false}
	if f.AttorneyStatus != "" {
		filter["attorneyStatus"] = f.AttorneyStatus
	}
	if f.AdminApprovalStatus != "" {
		filter["adminApprovalStatus"] = f.AdminApprovalStatus
	}
	if f.State != "" {
		filter["state"] = exactInsensitive(f.State)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		filter["caseTitle"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}
	return s.page(ctx, filter, p)
}

// GetCasesByAttorney lists an attorney's live cases
func (s *CaseService) GetCasesByAttorney(ctx context.Context, attorneyID primitive.ObjectID, p databases.Paginate) (Page[models.Case], error) {
	return s.page(ctx, bson.M{"attorneyId": attorneyID, "isDeleted": false}, p)
}

func (s *CaseService) page(ctx context.Context, filter bson.M, p databases.Paginate) (Page[models.Case], error) {
	total, err := s.Cases.CountDocuments(ctx, filter)
	if err != nil {
		return Page[models.Case]{}, errors.Wrap(err, "failed to count cases")
	}
	items, err := s.Cases.Find(ctx, filter, p.FindOptions())
	if err != nil {
		return Page[models.Case]{}, errors.Wrap(err, "failed to list cases")
	}
	return Page[models.Case]{Items: nonNil(items), Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// RequestReschedule is an admin sending a pending case back to its attorney to pick a new slot.
// slots holds either no suggestions or exactly three.
func (s *CaseService) RequestReschedule(ctx context.Context, caseID primitive.ObjectID, admin Actor, slots []models.TimeSlot, reason string) (*models.Case, error) {
	slots, err := scheduling.ValidateAlternateSlots(slots)
	if err != nil {
		return nil, invalid(err.Error())
	}
	c, err := s.GetCase(ctx, caseID, false)
	if err != nil {
		return nil, err
	}
	next, err := scheduling.ApplyAdminDecision(caseState(c), scheduling.DecisionReschedule)
	if err != nil {
		return nil, conflict(CodeInvalidTransition, err.Error())
	}

	held := models.HoldsSlot(false, next.Approval)
	if held && !models.HoldsSlot(c.IsDeleted, c.AdminApprovalStatus) {
		avail, err := s.CheckSlotAvailability(ctx, c.ScheduledDate, c.ScheduledTime, &c.ID)
		if err != nil {
			return nil, err
		}
		if avail.ConflictingCaseID != "" {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s was taken after the case was rejected", avail.Date, avail.Time))
		}
	}

	t := now()
	set := bson.M{
		"adminApprovalStatus":   next.Approval,
		"slotHeld":              held,
		"rescheduleRequired":    true,
		"alternateSlots":        slots,
		"originalScheduledDate": c.ScheduledDate,
		"originalScheduledTime": c.ScheduledTime,
		"rescheduleRequestedBy": admin.ID,
		"rescheduleRequestedAt": t,
		"updatedAt":             t,
	}
	if reason != "" {
		set["adminComments"] = reason
	}
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false, "attorneyStatus": c.AttorneyStatus},
		bson.M{"$set": set},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", c.ScheduledDate, c.ScheduledTime))
		}
		return nil, errors.Wrap(err, "failed to request reschedule")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "case changed while requesting reschedule")
	}

	c.AdminApprovalStatus = next.Approval
	c.SlotHeld = held
	c.RescheduleRequired = true
	c.AlternateSlots = slots
	c.OriginalScheduledDate = c.ScheduledDate
	c.OriginalScheduledTime = c.ScheduledTime
	c.RescheduleRequestedBy = ptrID(admin.ID)
	c.RescheduleRequestedAt = ptrTime(t)
	c.UpdatedAt = t

	if s.Reschedules != nil {
		req := models.CaseRescheduleRequest{
			ID:             primitive.NewObjectID(),
			CaseID:         c.ID,
			RequestedBy:    admin.ID,
			AlternateSlots: slots,
			OriginalDate:   c.ScheduledDate,
			OriginalTime:   c.ScheduledTime,
			Reason:         reason,
			Status:         models.RescheduleStatusPending,
			CreatedAt:      t,
		}
		if _, err := s.Reschedules.InsertOne(ctx, req); err != nil {
			zap.S().Errorw("failed to record case reschedule request", "caseId", c.ID.Hex(), "error", err)
		}
	}

	s.Events.Record(ctx, c.ID, models.EventRescheduleRequested, "admin requested a new slot", &admin,
		map[string]interface{}{"alternateSlots": len(slots)})
	msg := "Your case needs a new trial slot. Please pick any open slot."
	if len(slots) == 3 {
		msg = "Your case needs a new trial slot. Please choose one of the three suggested slots."
	}
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   c.AttorneyID,
		UserType: models.UserTypeAttorney,
		CaseID:   ptrID(c.ID),
		Type:     models.NotificationRescheduleRequired,
		Title:    "Reschedule required for " + c.Title,
		Message:  msg,
		Email:    true,
	})
	return c, nil
}

// ConfirmReschedule is the attorney picking the new slot. The update only applies while the
// case still has a pending reschedule, so a second confirmation fails.
func (s *CaseService) ConfirmReschedule(ctx context.Context, caseID primitive.ObjectID, attorney Actor, slot models.TimeSlot) (*models.Case, error) {
	slot, err := scheduling.NormalizeSlot(slot)
	if err != nil {
		return nil, invalid(err.Error())
	}
	c, err := s.GetCase(ctx, caseID, false)
	if err != nil {
		return nil, err
	}
	if c.AttorneyID != attorney.ID {
		return nil, forbidden("case belongs to another attorney")
	}
	next, err := scheduling.ApplyRescheduleConfirmation(caseState(c))
	if err != nil {
		return nil, conflict(CodeRescheduleNotPending, "case has no pending reschedule request")
	}
	if len(c.AlternateSlots) > 0 && !containsSlot(c.AlternateSlots, slot) {
		return nil, invalid("selected slot must be one of the suggested slots")
	}
	if !scheduling.IsFuture(slot.Date, slot.Time, now()) {
		return nil, invalid("selected slot must be in the future")
	}
	if err := s.ensureBookable(ctx, slot.Date, slot.Time, &c.ID); err != nil {
		return nil, err
	}

	t := now()
	set := bson.M{
		"scheduledDate":       slot.Date,
		"scheduledTime":       slot.Time,
		"adminApprovalStatus": next.Approval,
		"attorneyStatus":      next.Attorney,
		"rescheduleRequired":  false,
		"slotHeld":            true,
		"approvedAt":          t,
		"updatedAt":           t,
	}
	if c.RescheduleRequestedBy != nil {
		set["approvedBy"] = *c.RescheduleRequestedBy
	}
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false, "rescheduleRequired": true},
		bson.M{"$set": set, "$unset": bson.M{"alternateSlots": ""}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", slot.Date, slot.Time))
		}
		return nil, errors.Wrap(err, "failed to confirm reschedule")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeRescheduleNotPending, "case has no pending reschedule request")
	}

	c.ScheduledDate, c.ScheduledTime = slot.Date, slot.Time
	c.AdminApprovalStatus, c.AttorneyStatus = next.Approval, next.Attorney
	c.RescheduleRequired = false
	c.AlternateSlots = nil
	c.ApprovedAt = ptrTime(t)
	c.ApprovedBy = c.RescheduleRequestedBy
	c.UpdatedAt = t

	if s.Reschedules != nil {
		_, err := s.Reschedules.UpdateOne(ctx,
			bson.M{"caseId": c.ID, "status": models.RescheduleStatusPending},
			bson.M{"$set": bson.M{"status": models.RescheduleStatusConfirmed, "selectedSlot": slot, "confirmedAt": t}},
		)
		if err != nil {
			zap.S().Errorw("failed to close case reschedule request", "caseId", c.ID.Hex(), "error", err)
		}
	}
	s.Events.Record(ctx, c.ID, models.EventRescheduleConfirmed, "attorney confirmed "+slot.Date+" "+slot.Time, &attorney, nil)
	s.Notifier.notifyAdmins(ctx, NotifyInput{
		CaseID:  ptrID(c.ID),
		Type:    models.NotificationRescheduleConfirmed,
		Title:   "Reschedule confirmed",
		Message: fmt.Sprintf("%q moved to %s %s UTC", c.Title, slot.Date, slot.Time),
	})
	return c, nil
}

// ValidateCaseStateTransition checks the attorney status table and the juror requirement
func (s *CaseService) ValidateCaseStateTransition(ctx context.Context, caseID primitive.ObjectID, newStatus string) (scheduling.TransitionResult, error) {
	c, err := s.GetCase(ctx, caseID, false)
	if err != nil {
		return scheduling.TransitionResult{}, err
	}
	return s.validateTransition(ctx, c, newStatus)
}

func (s *CaseService) validateTransition(ctx context.Context, c *models.Case, newStatus string) (scheduling.TransitionResult, error) {
	approved := 0
	if newStatus == models.AttorneyStatusJoinTrial {
		n, err := s.Applications.CountDocuments(ctx, bson.M{"caseId": c.ID, "status": models.ApplicationApproved})
		if err != nil {
			return scheduling.TransitionResult{}, errors.Wrap(err, "failed to count approved jurors")
		}
		approved = int(n)
	}
	return scheduling.ValidateTransition(*c, newStatus, approved), nil
}

// StatusUpdate is a change to either status field of a case
type StatusUpdate struct {
	AttorneyStatus      string `json:"attorneyStatus"`
	AdminApprovalStatus string `json:"adminApprovalStatus"`
	Reason              string `json:"reason"`
	Comments            string `json:"adminComments"`
}

// UpdateCaseStatus applies a status change. Approval decisions cascade to the attorney status
// and the approval bookkeeping in the same write. The write only applies if neither status
// changed since the case was read.
func (s *CaseService) UpdateCaseStatus(ctx context.Context, caseID primitive.ObjectID, actor Actor, u StatusUpdate) (*models.Case, error) {
	if u.AttorneyStatus == "" && u.AdminApprovalStatus == "" {
		return nil, invalid("no status change requested")
	}
	c, err := s.GetCaseFor(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, notFound("case")
	}

	t := now()
	set := bson.M{"updatedAt": t}
	next := *c
	var eventType, eventDesc string

	if u.AdminApprovalStatus != "" {
		if !actor.IsAdmin() {
			return nil, forbidden("only admins decide case approval")
		}
		var decision string
		switch u.AdminApprovalStatus {
		case models.ApprovalStatusApproved:
			decision = scheduling.DecisionApprove
		case models.ApprovalStatusRejected:
			decision = scheduling.DecisionReject
		default:
			return nil, invalid("admin approval status must be approved or rejected")
		}
		st, err := scheduling.ApplyAdminDecision(caseState(c), decision)
		if err != nil {
			return nil, conflict(CodeInvalidTransition, err.Error())
		}
		next.AdminApprovalStatus, next.AttorneyStatus, next.RescheduleRequired = st.Approval, st.Attorney, st.RescheduleRequired
		next.SlotHeld = models.HoldsSlot(false, st.Approval)
		if next.SlotHeld && !models.HoldsSlot(c.IsDeleted, c.AdminApprovalStatus) {
			// a rejected case gets its slot back only if nobody took it meanwhile
			if err := s.ensureBookable(ctx, c.ScheduledDate, c.ScheduledTime, &c.ID); err != nil {
				return nil, err
			}
		}
		set["adminApprovalStatus"] = st.Approval
		set["attorneyStatus"] = st.Attorney
		set["rescheduleRequired"] = st.RescheduleRequired
		set["slotHeld"] = next.SlotHeld
		if u.Comments != "" {
			set["adminComments"] = u.Comments
			next.AdminComments = u.Comments
		}
		if decision == scheduling.DecisionApprove {
			set["approvedAt"], set["approvedBy"] = t, actor.ID
			next.ApprovedAt, next.ApprovedBy = ptrTime(t), ptrID(actor.ID)
			eventType, eventDesc = models.EventCaseApproved, "case approved"
		} else {
			set["rejectedAt"], set["rejectedBy"] = t, actor.ID
			next.RejectedAt, next.RejectedBy = ptrTime(t), ptrID(actor.ID)
			if u.Reason != "" {
				set["rejectionReason"] = u.Reason
				next.RejectionReason = u.Reason
			}
			eventType, eventDesc = models.EventCaseRejected, "case rejected"
		}
	}

	if u.AttorneyStatus != "" && u.AttorneyStatus != next.AttorneyStatus {
		if actor.Role == models.UserTypeJuror {
			return nil, forbidden("jurors cannot change case status")
		}
		res, err := s.validateTransition(ctx, &next, u.AttorneyStatus)
		if err != nil {
			return nil, err
		}
		if !res.Valid {
			return nil, conflict(CodeInvalidTransition, res.Message)
		}
		next.AttorneyStatus = u.AttorneyStatus
		set["attorneyStatus"] = u.AttorneyStatus
		if eventType == "" {
			eventType = models.EventStatusChanged
		}
		eventDesc = strings.TrimPrefix(eventDesc+"; status "+c.AttorneyStatus+" -> "+u.AttorneyStatus, "; ")
	}

	res, err := s.Cases.UpdateOne(ctx,
		bson.M{
			"_id":                 c.ID,
			"isDeleted":           false,
			"attorneyStatus":      c.AttorneyStatus,
			"adminApprovalStatus": c.AdminApprovalStatus,
		},
		bson.M{"$set": set},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeSlotUnavailable, fmt.Sprintf("slot %s %s is no longer available", c.ScheduledDate, c.ScheduledTime))
		}
		return nil, errors.Wrap(err, "failed to update case status")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "case changed while updating its status")
	}
	next.UpdatedAt = t

	if eventType != "" {
		s.Events.Record(ctx, c.ID, eventType, eventDesc, &actor, map[string]interface{}{
			"attorneyStatus":      next.AttorneyStatus,
			"adminApprovalStatus": next.AdminApprovalStatus,
		})
	}
	switch {
	case u.AdminApprovalStatus == models.ApprovalStatusApproved:
		s.Notifier.notifyQuietly(ctx, NotifyInput{
			UserID: c.AttorneyID, UserType: models.UserTypeAttorney, CaseID: ptrID(c.ID),
			Type: models.NotificationCaseApproved, Title: "Case approved",
			Message: fmt.Sprintf("%q was approved. Your war room is open.", c.Title), Email: true,
		})
	case u.AdminApprovalStatus == models.ApprovalStatusRejected:
		msg := fmt.Sprintf("%q was not approved.", c.Title)
		if u.Reason != "" {
			msg += " Reason: " + u.Reason
		}
		s.Notifier.notifyQuietly(ctx, NotifyInput{
			UserID: c.AttorneyID, UserType: models.UserTypeAttorney, CaseID: ptrID(c.ID),
			Type: models.NotificationCaseRejected, Title: "Case not approved", Message: msg, Email: true,
		})
	}
	return &next, nil
}

// ApproveCase is UpdateCaseStatus with an approval
func (s *CaseService) ApproveCase(ctx context.Context, caseID primitive.ObjectID, admin Actor, comments string) (*models.Case, error) {
	return s.UpdateCaseStatus(ctx, caseID, admin, StatusUpdate{AdminApprovalStatus: models.ApprovalStatusApproved, Comments: comments})
}

// RejectCase is UpdateCaseStatus with a rejection
func (s *CaseService) RejectCase(ctx context.Context, caseID primitive.ObjectID, admin Actor, reason string) (*models.Case, error) {
	return s.UpdateCaseStatus(ctx, caseID, admin, StatusUpdate{AdminApprovalStatus: models.ApprovalStatusRejected, Reason: reason})
}

// SoftDeleteCase flags a case deleted and frees its slot; the document stays for admins
func (s *CaseService) SoftDeleteCase(ctx context.Context, caseID primitive.ObjectID, actor Actor) error {
	c, err := s.GetCaseFor(ctx, caseID, actor)
	if err != nil {
		return err
	}
	if c.IsDeleted {
		return notFound("case")
	}
	t := now()
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": t, "slotHeld": false, "updatedAt": t}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to delete case")
	}
	if res.MatchedCount == 0 {
		return notFound("case")
	}
	s.Events.Record(ctx, c.ID, models.EventCaseDeleted, "case deleted", &actor, nil)
	return nil
}

// SetJuryChargeQuestions replaces the verdict questions until the jury charge is released
func (s *CaseService) SetJuryChargeQuestions(ctx context.Context, caseID primitive.ObjectID, actor Actor, qs []models.JuryChargeQuestion) (*models.Case, error) {
	if msgs := scheduling.ValidateQuestions(qs); len(msgs) > 0 {
		return nil, invalid(msgs...)
	}
	c, err := s.GetCaseFor(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}
	for i := range qs {
		if qs[i].Order == 0 {
			qs[i].Order = i + 1
		}
	}
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false, "juryChargeStatus": bson.M{"$ne": models.JuryChargeCompleted}},
		bson.M{"$set": bson.M{"juryChargeQuestions": nonNil(qs), "updatedAt": now()}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save jury charge")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "jury charge was already released")
	}
	c.JuryChargeQuestions = nonNil(qs)
	return c, nil
}

// ReleaseJuryCharge opens verdict submission and tells the case's approved jurors
func (s *CaseService) ReleaseJuryCharge(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.Case, error) {
	c, err := s.GetCaseFor(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}
	if len(c.JuryChargeQuestions) == 0 {
		return nil, invalid("jury charge has no questions")
	}
	if c.AttorneyStatus != models.AttorneyStatusJoinTrial && c.AttorneyStatus != models.AttorneyStatusViewDetails {
		return nil, conflict(CodeInvalidTransition, "jury charge can only be released during the trial")
	}
	t := now()
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false, "juryChargeStatus": bson.M{"$ne": models.JuryChargeCompleted}},
		bson.M{"$set": bson.M{"juryChargeStatus": models.JuryChargeCompleted, "juryChargeReleasedAt": t, "updatedAt": t}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to release jury charge")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "jury charge was already released")
	}
	c.JuryChargeStatus = models.JuryChargeCompleted
	c.JuryChargeReleasedAt = ptrTime(t)

	s.Events.Record(ctx, c.ID, models.EventJuryChargeReleased, "jury charge released", &actor, nil)
	jurors, err := s.Applications.Find(ctx, bson.M{"caseId": c.ID, "status": models.ApplicationApproved})
	if err != nil {
		zap.S().Errorw("failed to load jurors for jury charge notice", "caseId", c.ID.Hex(), "error", err)
		return c, nil
	}
	for _, a := range jurors {
		s.Notifier.notifyQuietly(ctx, NotifyInput{
			UserID: a.JurorID, UserType: models.UserTypeJuror, CaseID: ptrID(c.ID),
			Type: models.NotificationVerdictRequested, Title: "Verdict form available",
			Message: fmt.Sprintf("The jury charge for %q is released. Please submit your verdict.", c.Title),
		})
	}
	return c, nil
}

// UpdateVoirDire replaces the screening questions while jurors are still being recruited
func (s *CaseService) UpdateVoirDire(ctx context.Context, caseID primitive.ObjectID, actor Actor, part1, part2 []string) (*models.Case, error) {
	c, err := s.GetCaseFor(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}
	if c.AttorneyStatus != models.AttorneyStatusPending && c.AttorneyStatus != models.AttorneyStatusWarRoom {
		return nil, conflict(CodeInvalidTransition, "voir dire is locked once the trial starts")
	}
	part1, part2 = nonNil(trimAll(part1)), nonNil(trimAll(part2))
	_, err = s.Cases.UpdateOne(ctx,
		bson.M{"_id": c.ID, "isDeleted": false},
		bson.M{"$set": bson.M{"voirDire1Questions": part1, "voirDire2Questions": part2, "updatedAt": now()}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update voir dire")
	}
	c.VoirDire1Questions, c.VoirDire2Questions = part1, part2
	return c, nil
}

func caseState(c *models.Case) scheduling.CaseState {
	return scheduling.CaseState{Approval: c.AdminApprovalStatus, Attorney: c.AttorneyStatus, RescheduleRequired: c.RescheduleRequired}
}

func containsSlot(slots []models.TimeSlot, s models.TimeSlot) bool {
	for _, o := range slots {
		if o == s {
			return true
		}
	}
	return false
}

func exactInsensitive(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(v)) + "$", Options: "i"}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
