package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/scheduling"
)

// MaxBatchSize caps the ids accepted by one batch review call
const MaxBatchSize = 50

// ApplicationService runs the juror application workflow
type ApplicationService struct {
	DB       databases.ApplicationDatabase
	Cases    databases.CaseDatabase
	Jurors   databases.JurorDatabase
	Events   *EventService
	Notifier *NotificationService
}

// ApplicationInput is a juror's voir dire answers for one case
type ApplicationInput struct {
	VoirDire1Responses []models.VoirDireResponse `json:"voirDire1Responses"`
	VoirDire2Responses []models.VoirDireResponse `json:"voirDire2Responses"`
}

// BatchFailure names an id a batch call could not update
type BatchFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult summarizes a batch review
type BatchResult struct {
	Requested int            `json:"requested"`
	Updated   int            `json:"updated"`
	Failed    []BatchFailure `json:"failed"`
}

// HasJurorApplied reports whether the juror already has an application for the case, in any status
func (s *ApplicationService) HasJurorApplied(ctx context.Context, jurorID, caseID primitive.ObjectID) (bool, error) {
	n, err := s.DB.CountDocuments(ctx, bson.M{"jurorId": jurorID, "caseId": caseID})
	if err != nil {
		return false, errors.Wrap(err, "failed to check existing application")
	}
	return n > 0, nil
}

// CreateApplication applies a verified juror to an approved case that still has seats
func (s *ApplicationService) CreateApplication(ctx context.Context, jurorID, caseID primitive.ObjectID, in ApplicationInput) (*models.JurorApplication, error) {
	juror, err := s.Jurors.FindOne(ctx, bson.M{"_id": jurorID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "juror")
	}
	if !juror.IsVerified {
		return nil, forbidden("juror account is not verified")
	}
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if c.AdminApprovalStatus != models.ApprovalStatusApproved || c.AttorneyStatus != models.AttorneyStatusWarRoom {
		return nil, conflict(CodeInvalidTransition, "case is not accepting applications")
	}
	if c.ApprovedJurorCount >= models.MaxApprovedJurors {
		return nil, conflict(CodeCaseFull, "case already has a full jury")
	}

	applied, err := s.HasJurorApplied(ctx, jurorID, caseID)
	if err != nil {
		return nil, err
	}
	if applied {
		return nil, conflict(CodeDuplicateApplication, "juror already applied to this case")
	}

	t := now()
	app := models.JurorApplication{
		ID:                 primitive.NewObjectID(),
		JurorID:            jurorID,
		CaseID:             caseID,
		Status:             models.ApplicationPending,
		VoirDire1Responses: nonNil(in.VoirDire1Responses),
		VoirDire2Responses: nonNil(in.VoirDire2Responses),
		AppliedAt:          t,
		UpdatedAt:          t,
	}
	if _, err := s.DB.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeDuplicateApplication, "juror already applied to this case")
		}
		return nil, errors.Wrap(err, "failed to insert application")
	}

	s.Events.Record(ctx, caseID, models.EventApplicationSubmitted, juror.Name+" applied",
		&Actor{ID: jurorID, Role: models.UserTypeJuror}, map[string]interface{}{"applicationId": app.ID.Hex()})
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   c.AttorneyID,
		UserType: models.UserTypeAttorney,
		CaseID:   ptrID(caseID),
		Type:     models.NotificationApplicationReceived,
		Title:    "New juror application",
		Message:  fmt.Sprintf("A juror applied to %q", c.Title),
	})
	return &app, nil
}

// UpdateApplicationStatus moves an application. Reviewers (admins and the case's attorney)
// approve or reject pending applications; the juror may withdraw a pending or approved one.
func (s *ApplicationService) UpdateApplicationStatus(ctx context.Context, appID primitive.ObjectID, actor Actor, status, notes string) (*models.JurorApplication, error) {
	app, err := s.DB.FindOne(ctx, bson.M{"_id": appID})
	if err != nil {
		return nil, lookup(err, "application")
	}
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": app.CaseID})
	if err != nil {
		return nil, lookup(err, "case")
	}

	switch status {
	case models.ApplicationApproved, models.ApplicationRejected:
		if !actor.IsAdmin() && !(actor.Role == models.UserTypeAttorney && c.AttorneyID == actor.ID) {
			return nil, forbidden("only admins or the case attorney review applications")
		}
		if c.IsDeleted {
			return nil, notFound("case")
		}
		if err := s.decide(ctx, app, c, actor, status, notes); err != nil {
			return nil, err
		}
	case models.ApplicationWithdrawn:
		if actor.Role != models.UserTypeJuror || app.JurorID != actor.ID {
			return nil, forbidden("only the applicant can withdraw")
		}
		if err := s.withdraw(ctx, app); err != nil {
			return nil, err
		}
	default:
		return nil, invalid(fmt.Sprintf("unknown application status %q", status))
	}
	return app, nil
}

// decide approves or rejects one pending application. An approval first reserves a seat on the
// case with a conditional increment, so only MaxApprovedJurors approvals ever succeed.
func (s *ApplicationService) decide(ctx context.Context, app *models.JurorApplication, c *models.Case, actor Actor, status, notes string) error {
	if app.Status != models.ApplicationPending {
		return conflict(CodeInvalidTransition, fmt.Sprintf("application is already %s", app.Status))
	}
	if status == models.ApplicationApproved {
		if err := s.reserveSeat(ctx, c.ID); err != nil {
			return err
		}
	}

	t := now()
	set := bson.M{"status": status, "reviewedBy": actor.ID, "reviewedAt": t, "updatedAt": t}
	if notes != "" {
		set["reviewNotes"] = notes
	}
	res, err := s.DB.UpdateOne(ctx, bson.M{"_id": app.ID, "status": models.ApplicationPending}, bson.M{"$set": set})
	if err != nil || res.MatchedCount == 0 {
		if status == models.ApplicationApproved {
			s.releaseSeat(ctx, c.ID)
		}
		if err != nil {
			return errors.Wrap(err, "failed to update application")
		}
		return conflict(CodeInvalidTransition, "application was reviewed concurrently")
	}

	app.Status = status
	app.ReviewedBy, app.ReviewedAt, app.UpdatedAt = ptrID(actor.ID), ptrTime(t), t
	if notes != "" {
		app.ReviewNotes = notes
	}
	s.announceDecision(ctx, app, c, actor, status)
	return nil
}

// announceDecision records the decision on the case and tells the juror
func (s *ApplicationService) announceDecision(ctx context.Context, app *models.JurorApplication, c *models.Case, actor Actor, status string) {
	s.Events.Record(ctx, c.ID, models.EventApplicationDecided, "application "+status, &actor,
		map[string]interface{}{"applicationId": app.ID.Hex(), "jurorId": app.JurorID.Hex()})
	in := NotifyInput{
		UserID:   app.JurorID,
		UserType: models.UserTypeJuror,
		CaseID:   ptrID(c.ID),
		Email:    true,
	}
	if status == models.ApplicationApproved {
		in.Type, in.Title = models.NotificationApplicationApproved, "Application approved"
		in.Message = fmt.Sprintf("You have been selected as a juror for %q on %s at %s UTC.", c.Title, c.ScheduledDate, c.ScheduledTime)
	} else {
		in.Type, in.Title = models.NotificationApplicationRejected, "Application not selected"
		in.Message = fmt.Sprintf("You were not selected for %q.", c.Title)
	}
	s.Notifier.notifyQuietly(ctx, in)
}

func (s *ApplicationService) withdraw(ctx context.Context, app *models.JurorApplication) error {
	if app.Status != models.ApplicationPending && app.Status != models.ApplicationApproved {
		return conflict(CodeInvalidTransition, fmt.Sprintf("application is already %s", app.Status))
	}
	t := now()
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": app.ID, "status": app.Status},
		bson.M{"$set": bson.M{"status": models.ApplicationWithdrawn, "updatedAt": t}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to withdraw application")
	}
	if res.MatchedCount == 0 {
		return conflict(CodeInvalidTransition, "application changed while withdrawing")
	}
	if app.Status == models.ApplicationApproved {
		s.releaseSeat(ctx, app.CaseID)
	}
	app.Status, app.UpdatedAt = models.ApplicationWithdrawn, t
	return nil
}

func (s *ApplicationService) reserveSeat(ctx context.Context, caseID primitive.ObjectID) error {
	res, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": caseID, "isDeleted": false, "approvedJurorCount": bson.M{"$lt": models.MaxApprovedJurors}},
		bson.M{"$inc": bson.M{"approvedJurorCount": 1}, "$set": bson.M{"updatedAt": now()}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to reserve juror seat")
	}
	if res.MatchedCount == 0 {
		return conflict(CodeCaseFull, "case already has a full jury")
	}
	return nil
}

func (s *ApplicationService) releaseSeat(ctx context.Context, caseID primitive.ObjectID) {
	_, err := s.Cases.UpdateOne(ctx,
		bson.M{"_id": caseID, "approvedJurorCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"approvedJurorCount": -1}, "$set": bson.M{"updatedAt": now()}},
	)
	if err != nil {
		zap.S().Errorw("failed to release juror seat", "caseId", caseID.Hex(), "error", err)
	}
}

func batchIDs(ids []string) ([]primitive.ObjectID, error) {
	if len(ids) == 0 || len(ids) > MaxBatchSize {
		return nil, invalid(fmt.Sprintf("batch must contain between 1 and %d application ids", MaxBatchSize))
	}
	parsed, bad := objectIDs(ids)
	if len(bad) > 0 {
		msgs := make([]string, 0, len(bad))
		for _, b := range bad {
			msgs = append(msgs, fmt.Sprintf("invalid application id %q", b))
		}
		return nil, invalid(msgs...)
	}
	return parsed, nil
}

// BatchApproveApplications approves up to MaxBatchSize pending applications one seat at a time;
// ids that cannot be approved are reported rather than failing the batch
func (s *ApplicationService) BatchApproveApplications(ctx context.Context, admin Actor, ids []string, notes string) (BatchResult, error) {
	parsed, err := batchIDs(ids)
	if err != nil {
		return BatchResult{}, err
	}
	apps, err := s.DB.Find(ctx, bson.M{"_id": bson.M{"$in": parsed}})
	if err != nil {
		return BatchResult{}, errors.Wrap(err, "failed to load applications")
	}

	result := BatchResult{Requested: len(parsed), Failed: []BatchFailure{}}
	found := map[primitive.ObjectID]bool{}
	cases := map[primitive.ObjectID]*models.Case{}
	for i := range apps {
		app := &apps[i]
		found[app.ID] = true
		c, ok := cases[app.CaseID]
		if !ok {
			c, err = s.Cases.FindOne(ctx, bson.M{"_id": app.CaseID, "isDeleted": false})
			if err != nil {
				result.Failed = append(result.Failed, BatchFailure{ID: app.ID.Hex(), Reason: lookup(err, "case").Error()})
				continue
			}
			cases[app.CaseID] = c
		}
		if err := s.decide(ctx, app, c, admin, models.ApplicationApproved, notes); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: app.ID.Hex(), Reason: err.Error()})
			continue
		}
		result.Updated++
	}
	for _, id := range parsed {
		if !found[id] {
			result.Failed = append(result.Failed, BatchFailure{ID: id.Hex(), Reason: "application not found"})
		}
	}
	return result, nil
}

// BatchRejectApplications rejects every listed application that is still pending in one write,
// then notifies the jurors whose application that write changed
func (s *ApplicationService) BatchRejectApplications(ctx context.Context, admin Actor, ids []string, notes string) (BatchResult, error) {
	parsed, err := batchIDs(ids)
	if err != nil {
		return BatchResult{}, err
	}
	pending, err := s.DB.Find(ctx, bson.M{"_id": bson.M{"$in": parsed}, "status": models.ApplicationPending})
	if err != nil {
		return BatchResult{}, errors.Wrap(err, "failed to load applications")
	}
	result := BatchResult{Requested: len(parsed), Failed: []BatchFailure{}}
	pendingIDs := make([]primitive.ObjectID, 0, len(pending))
	for _, app := range pending {
		pendingIDs = append(pendingIDs, app.ID)
	}

	rejected := map[primitive.ObjectID]bool{}
	if len(pendingIDs) > 0 {
		// stored times keep millisecond precision
		t := now().Truncate(time.Millisecond)
		set := bson.M{"status": models.ApplicationRejected, "reviewedBy": admin.ID, "reviewedAt": t, "updatedAt": t}
		if notes != "" {
			set["reviewNotes"] = notes
		}
		res, err := s.DB.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": pendingIDs}, "status": models.ApplicationPending},
			bson.M{"$set": set},
		)
		if err != nil {
			return BatchResult{}, errors.Wrap(err, "failed to reject applications")
		}
		result.Updated = int(res.ModifiedCount)

		changed := pending
		if result.Updated < len(pending) {
			// some were reviewed between the read and the write
			changed, err = s.DB.Find(ctx, bson.M{
				"_id":        bson.M{"$in": pendingIDs},
				"status":     models.ApplicationRejected,
				"reviewedBy": admin.ID,
				"reviewedAt": t,
			})
			if err != nil {
				zap.S().Errorw("failed to reload batch rejected applications", "adminId", admin.ID.Hex(), "error", err)
				changed = nil
			}
		}

		cases := map[primitive.ObjectID]*models.Case{}
		for i := range changed {
			app := &changed[i]
			rejected[app.ID] = true
			app.Status = models.ApplicationRejected
			app.ReviewedBy, app.ReviewedAt, app.UpdatedAt = ptrID(admin.ID), ptrTime(t), t
			c, ok := cases[app.CaseID]
			if !ok {
				c, err = s.Cases.FindOne(ctx, bson.M{"_id": app.CaseID})
				if err != nil {
					zap.S().Errorw("failed to load case for rejected application", "applicationId", app.ID.Hex(), "caseId", app.CaseID.Hex(), "error", err)
					continue
				}
				cases[app.CaseID] = c
			}
			s.announceDecision(ctx, app, c, admin, models.ApplicationRejected)
		}
	}

	for _, id := range parsed {
		if !rejected[id] {
			result.Failed = append(result.Failed, BatchFailure{ID: id.Hex(), Reason: "application not found or no longer pending"})
		}
	}
	zap.S().Infow("batch rejected applications", "requested", len(parsed), "modified", result.Updated, "adminId", admin.ID.Hex())
	return result, nil
}

// GetApplicationsForCase lists a case's applications, optionally by status
func (s *ApplicationService) GetApplicationsForCase(ctx context.Context, caseID primitive.ObjectID, actor Actor, status string) ([]models.JurorApplication, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if !actor.IsAdmin() && c.AttorneyID != actor.ID {
		return nil, forbidden("case belongs to another attorney")
	}
	filter := bson.M{"caseId": caseID}
	if status != "" {
		filter["status"] = status
	}
	apps, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list applications")
	}
	return nonNil(apps), nil
}

// GetApplicationsForJuror lists a juror's own applications
func (s *ApplicationService) GetApplicationsForJuror(ctx context.Context, jurorID primitive.ObjectID) ([]models.JurorApplication, error) {
	apps, err := s.DB.Find(ctx, bson.M{"jurorId": jurorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list applications")
	}
	return nonNil(apps), nil
}

// GetAvailableCasesForJurors lists approved cases in the juror's state and county that still have
// seats, that the juror has not applied to and whose local trial day has not passed
func (s *ApplicationService) GetAvailableCasesForJurors(ctx context.Context, jurorID primitive.ObjectID) ([]models.Case, error) {
	juror, err := s.Jurors.FindOne(ctx, bson.M{"_id": jurorID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "juror")
	}
	if juror.State == "" || juror.County == "" {
		return []models.Case{}, nil
	}

	mine, err := s.DB.Find(ctx, bson.M{"jurorId": jurorID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load juror applications")
	}
	applied := make([]primitive.ObjectID, 0, len(mine))
	for _, a := range mine {
		applied = append(applied, a.CaseID)
	}

	filter := bson.M{
		"isDeleted":           false,
		"adminApprovalStatus": models.ApprovalStatusApproved,
		"attorneyStatus":      models.AttorneyStatusWarRoom,
		"state":               exactInsensitive(juror.State),
		"county":              exactInsensitive(juror.County),
		"approvedJurorCount":  bson.M{"$lt": models.MaxApprovedJurors},
	}
	if len(applied) > 0 {
		filter["_id"] = bson.M{"$nin": applied}
	}
	found, err := s.Cases.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available cases")
	}

	t := now()
	out := make([]models.Case, 0, len(found))
	for _, c := range found {
		loc := scheduling.ResolveLocation(c.TimeZone, c.State)
		if scheduling.LocalDayPassed(c.ScheduledDate, c.ScheduledTime, loc, t) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
