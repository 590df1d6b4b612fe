package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// War room events pushed to everyone connected to a case
const (
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventMeetingStarted    = "meeting_started"
	EventMeetingEnded      = "meeting_ended"
	EventIncident          = "incident_reported"
)

// MeetingService runs the virtual courtroom of a case
type MeetingService struct {
	DB           databases.MeetingDatabase
	Participants databases.ParticipantDatabase
	Incidents    databases.IncidentDatabase
	Recordings   databases.RecordingDatabase
	Cases        databases.CaseDatabase
	Applications databases.ApplicationDatabase
	Events       *EventService
	Notifier     *NotificationService
	Realtime     Realtime
	Assets       AssetStore
}

// IncidentInput is a problem report from a trial participant
type IncidentInput struct {
	Type        string `json:"incidentType"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// RecordingInput registers a recording produced for a meeting
type RecordingInput struct {
	MeetingID       string `json:"meetingId"`
	URL             string `json:"url"`
	PublicID        string `json:"publicId"`
	DurationSeconds int    `json:"durationSeconds"`
}

func (s *MeetingService) broadcast(caseID primitive.ObjectID, event string, payload interface{}) {
	if s.Realtime != nil {
		s.Realtime.BroadcastToCase(caseID.Hex(), event, payload)
	}
}

func (s *MeetingService) liveCase(ctx context.Context, caseID primitive.ObjectID) (*models.Case, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	return c, nil
}

// CanAttend reports whether the actor may enter the case's war room: admins, the case's
// attorney and its approved jurors
func (s *MeetingService) CanAttend(ctx context.Context, c *models.Case, actor Actor) (bool, error) {
	switch actor.Role {
	case models.UserTypeAdmin:
		return true, nil
	case models.UserTypeAttorney:
		return c.AttorneyID == actor.ID, nil
	case models.UserTypeJuror:
		n, err := s.Applications.CountDocuments(ctx, bson.M{"caseId": c.ID, "jurorId": actor.ID, "status": models.ApplicationApproved})
		if err != nil {
			return false, errors.Wrap(err, "failed to check juror seat")
		}
		return n > 0, nil
	}
	return false, nil
}

// AttendCase loads a live case and checks the actor may attend it
func (s *MeetingService) AttendCase(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.Case, error) {
	c, err := s.liveCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanAttend(ctx, c, actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, forbidden("not a participant of this case")
	}
	return c, nil
}

func runsTrial(c *models.Case, actor Actor) bool {
	return actor.IsAdmin() || (actor.Role == models.UserTypeAttorney && c.AttorneyID == actor.ID)
}

// GetActiveMeeting returns the case's running meeting
func (s *MeetingService) GetActiveMeeting(ctx context.Context, caseID primitive.ObjectID) (*models.TrialMeeting, error) {
	m, err := s.DB.FindOne(ctx, bson.M{"caseId": caseID, "status": models.MeetingActive})
	if err != nil {
		return nil, lookup(err, "active meeting")
	}
	return m, nil
}

// CreateMeeting opens the courtroom. A case has at most one active meeting.
func (s *MeetingService) CreateMeeting(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.TrialMeeting, error) {
	c, err := s.liveCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !runsTrial(c, actor) {
		return nil, forbidden("only admins or the case attorney start a meeting")
	}
	if c.AdminApprovalStatus != models.ApprovalStatusApproved {
		return nil, conflict(CodeInvalidTransition, "case must be approved before a meeting starts")
	}
	if c.AttorneyStatus != models.AttorneyStatusWarRoom && c.AttorneyStatus != models.AttorneyStatusJoinTrial {
		return nil, conflict(CodeInvalidTransition, "case is not in a state that allows a meeting")
	}

	_, err = s.GetActiveMeeting(ctx, caseID)
	if err == nil {
		return nil, conflict(CodeMeetingExists, "case already has an active meeting")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	m := models.TrialMeeting{
		ID:        primitive.NewObjectID(),
		CaseID:    caseID,
		RoomName:  "qv-" + uuid.NewString(),
		Status:    models.MeetingActive,
		StartedBy: actor.ID,
		StartedAt: now(),
	}
	if _, err := s.DB.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeMeetingExists, "case already has an active meeting")
		}
		return nil, errors.Wrap(err, "failed to insert meeting")
	}

	s.Events.Record(ctx, caseID, models.EventMeetingStarted, "meeting started", &actor,
		map[string]interface{}{"meetingId": m.ID.Hex(), "roomName": m.RoomName})
	s.broadcast(caseID, EventMeetingStarted, m)
	jurors, err := s.Applications.Find(ctx, bson.M{"caseId": caseID, "status": models.ApplicationApproved})
	if err != nil {
		zap.S().Errorw("failed to load jurors for meeting notice", "caseId", caseID.Hex(), "error", err)
		return &m, nil
	}
	for _, a := range jurors {
		s.Notifier.notifyQuietly(ctx, NotifyInput{
			UserID: a.JurorID, UserType: models.UserTypeJuror, CaseID: ptrID(caseID),
			Type: models.NotificationTrialStarting, Title: "Trial starting",
			Message: fmt.Sprintf("The trial for %q has started. Join the courtroom now.", c.Title),
		})
	}
	return &m, nil
}

// JoinMeeting adds the actor to the active meeting. Joining twice returns the open participation.
func (s *MeetingService) JoinMeeting(ctx context.Context, caseID primitive.ObjectID, actor Actor, displayName string) (*models.TrialParticipant, error) {
	if _, err := s.AttendCase(ctx, caseID, actor); err != nil {
		return nil, err
	}
	m, err := s.GetActiveMeeting(ctx, caseID)
	if err != nil {
		return nil, err
	}

	open, err := s.Participants.FindOne(ctx, bson.M{"meetingId": m.ID, "userId": actor.ID, "leftAt": nil})
	if err == nil {
		return open, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(err, "failed to load participant")
	}

	p := models.TrialParticipant{
		ID:          primitive.NewObjectID(),
		MeetingID:   m.ID,
		CaseID:      caseID,
		UserID:      actor.ID,
		UserType:    actor.Role,
		DisplayName: strings.TrimSpace(displayName),
		JoinedAt:    now(),
	}
	if _, err := s.Participants.InsertOne(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to insert participant")
	}
	s.broadcast(caseID, EventParticipantJoined, p)
	return &p, nil
}

// LeaveMeeting closes the actor's open participation
func (s *MeetingService) LeaveMeeting(ctx context.Context, caseID primitive.ObjectID, actor Actor) error {
	m, err := s.GetActiveMeeting(ctx, caseID)
	if err != nil {
		return err
	}
	t := now()
	res, err := s.Participants.UpdateMany(ctx,
		bson.M{"meetingId": m.ID, "userId": actor.ID, "leftAt": nil},
		bson.M{"$set": bson.M{"leftAt": t}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to leave meeting")
	}
	if res.ModifiedCount == 0 {
		return notFound("participant")
	}
	s.broadcast(caseID, EventParticipantLeft, map[string]interface{}{"userId": actor.ID.Hex(), "userType": actor.Role, "leftAt": t})
	return nil
}

// ActiveParticipants lists who is in the meeting right now
func (s *MeetingService) ActiveParticipants(ctx context.Context, caseID primitive.ObjectID, actor Actor) ([]models.TrialParticipant, error) {
	if _, err := s.AttendCase(ctx, caseID, actor); err != nil {
		return nil, err
	}
	m, err := s.GetActiveMeeting(ctx, caseID)
	if err != nil {
		return nil, err
	}
	ps, err := s.Participants.Find(ctx, bson.M{"meetingId": m.ID, "leftAt": nil})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list participants")
	}
	return nonNil(ps), nil
}

// EndMeeting closes the meeting and every open participation in it
func (s *MeetingService) EndMeeting(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.TrialMeeting, error) {
	c, err := s.liveCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !runsTrial(c, actor) {
		return nil, forbidden("only admins or the case attorney end a meeting")
	}
	m, err := s.GetActiveMeeting(ctx, caseID)
	if err != nil {
		return nil, err
	}

	t := now()
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"_id": m.ID, "status": models.MeetingActive},
		bson.M{"$set": bson.M{"status": models.MeetingEnded, "endedAt": t}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to end meeting")
	}
	if res.MatchedCount == 0 {
		return nil, notFound("active meeting")
	}
	if _, err := s.Participants.UpdateMany(ctx,
		bson.M{"meetingId": m.ID, "leftAt": nil},
		bson.M{"$set": bson.M{"leftAt": t}},
	); err != nil {
		zap.S().Errorw("failed to close meeting participants", "meetingId", m.ID.Hex(), "error", err)
	}
	m.Status, m.EndedAt = models.MeetingEnded, ptrTime(t)

	s.Events.Record(ctx, caseID, models.EventMeetingEnded, "meeting ended", &actor,
		map[string]interface{}{"meetingId": m.ID.Hex()})
	s.broadcast(caseID, EventMeetingEnded, m)
	return m, nil
}

var (
	incidentTypes = map[string]bool{
		models.IncidentTechnical: true, models.IncidentConnectivity: true,
		models.IncidentConduct: true, models.IncidentOther: true,
	}
	severities = map[string]bool{
		models.SeverityLow: true, models.SeverityMedium: true,
		models.SeverityHigh: true, models.SeverityCritical: true,
	}
)

// ReportIncident records a problem during the trial and alerts admins
func (s *MeetingService) ReportIncident(ctx context.Context, caseID primitive.ObjectID, actor Actor, in IncidentInput) (*models.TrialIncident, error) {
	var msgs []string
	if !incidentTypes[in.Type] {
		msgs = append(msgs, "incident type must be technical, connectivity, conduct or other")
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}
	if !severities[in.Severity] {
		msgs = append(msgs, "severity must be low, medium, high or critical")
	}
	if strings.TrimSpace(in.Description) == "" {
		msgs = append(msgs, "description is required")
	}
	if len(msgs) > 0 {
		return nil, invalid(msgs...)
	}
	c, err := s.AttendCase(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}

	inc := models.TrialIncident{
		ID:           primitive.NewObjectID(),
		CaseID:       caseID,
		ReportedBy:   actor.ID,
		ReporterType: actor.Role,
		Type:         in.Type,
		Severity:     in.Severity,
		Description:  strings.TrimSpace(in.Description),
		Status:       models.IncidentOpen,
		CreatedAt:    now(),
	}
	if m, err := s.GetActiveMeeting(ctx, caseID); err == nil {
		inc.MeetingID = ptrID(m.ID)
	}
	if _, err := s.Incidents.InsertOne(ctx, inc); err != nil {
		return nil, errors.Wrap(err, "failed to insert incident")
	}

	s.Events.Record(ctx, caseID, models.EventIncidentReported, in.Severity+" "+in.Type+" incident", &actor,
		map[string]interface{}{"incidentId": inc.ID.Hex()})
	s.broadcast(caseID, EventIncident, inc)
	s.Notifier.notifyAdmins(ctx, NotifyInput{
		CaseID:  ptrID(caseID),
		Type:    models.NotificationIncidentReported,
		Title:   "Trial incident reported",
		Message: fmt.Sprintf("%s %s incident on %q: %s", in.Severity, in.Type, c.Title, inc.Description),
	})
	return &inc, nil
}

// ResolveIncident closes an open incident
func (s *MeetingService) ResolveIncident(ctx context.Context, incidentID primitive.ObjectID, admin Actor, resolution string) (*models.TrialIncident, error) {
	inc, err := s.Incidents.FindOne(ctx, bson.M{"_id": incidentID})
	if err != nil {
		return nil, lookup(err, "incident")
	}
	if inc.Status != models.IncidentOpen {
		return nil, conflict(CodeInvalidTransition, "incident is already resolved")
	}
	t := now()
	res, err := s.Incidents.UpdateOne(ctx,
		bson.M{"_id": incidentID, "status": models.IncidentOpen},
		bson.M{"$set": bson.M{"status": models.IncidentResolved, "resolution": resolution, "resolvedBy": admin.ID, "resolvedAt": t}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve incident")
	}
	if res.MatchedCount == 0 {
		return nil, conflict(CodeInvalidTransition, "incident is already resolved")
	}
	inc.Status, inc.Resolution = models.IncidentResolved, resolution
	inc.ResolvedBy, inc.ResolvedAt = ptrID(admin.ID), ptrTime(t)
	return inc, nil
}

// ListIncidents lists a case's incidents, optionally by status
func (s *MeetingService) ListIncidents(ctx context.Context, caseID primitive.ObjectID, status string) ([]models.TrialIncident, error) {
	filter := bson.M{"caseId": caseID}
	if status != "" {
		filter["status"] = status
	}
	out, err := s.Incidents.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list incidents")
	}
	return nonNil(out), nil
}

// AddRecording registers a recording of one of the case's meetings
func (s *MeetingService) AddRecording(ctx context.Context, caseID primitive.ObjectID, actor Actor, in RecordingInput) (*models.TrialRecording, error) {
	meetingID, err := primitive.ObjectIDFromHex(in.MeetingID)
	if err != nil {
		return nil, invalid("meeting id is invalid")
	}
	if in.DurationSeconds < 0 {
		return nil, invalid("duration cannot be negative")
	}
	c, err := s.liveCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !runsTrial(c, actor) {
		return nil, forbidden("only admins or the case attorney add recordings")
	}
	if _, err := s.DB.FindOne(ctx, bson.M{"_id": meetingID, "caseId": caseID}); err != nil {
		return nil, lookup(err, "meeting")
	}

	t := now()
	rec := models.TrialRecording{
		ID:              primitive.NewObjectID(),
		CaseID:          caseID,
		MeetingID:       meetingID,
		URL:             in.URL,
		PublicID:        in.PublicID,
		DurationSeconds: in.DurationSeconds,
		Status:          models.RecordingProcessing,
		CreatedAt:       t,
		UpdatedAt:       t,
	}
	if in.URL != "" {
		rec.Status = models.RecordingAvailable
	}
	if _, err := s.Recordings.InsertOne(ctx, rec); err != nil {
		return nil, errors.Wrap(err, "failed to insert recording")
	}
	return &rec, nil
}

// ListRecordings lists a case's recordings that were not deleted
func (s *MeetingService) ListRecordings(ctx context.Context, caseID primitive.ObjectID, actor Actor) ([]models.TrialRecording, error) {
	c, err := s.liveCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !runsTrial(c, actor) {
		return nil, forbidden("only admins or the case attorney see recordings")
	}
	out, err := s.Recordings.Find(ctx, bson.M{"caseId": caseID, "status": bson.M{"$ne": models.RecordingDeleted}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recordings")
	}
	return nonNil(out), nil
}

// DeleteRecording marks a recording deleted and removes its asset
func (s *MeetingService) DeleteRecording(ctx context.Context, recordingID primitive.ObjectID, admin Actor) error {
	rec, err := s.Recordings.FindOne(ctx, bson.M{"_id": recordingID, "status": bson.M{"$ne": models.RecordingDeleted}})
	if err != nil {
		return lookup(err, "recording")
	}
	if _, err := s.Recordings.UpdateOne(ctx,
		bson.M{"_id": rec.ID},
		bson.M{"$set": bson.M{"status": models.RecordingDeleted, "updatedAt": now()}},
	); err != nil {
		return errors.Wrap(err, "failed to delete recording")
	}
	if s.Assets != nil && rec.PublicID != "" {
		if err := s.Assets.Destroy(ctx, rec.PublicID, "video"); err != nil {
			zap.S().Errorw("failed to destroy recording asset", "recordingId", rec.ID.Hex(), "publicId", rec.PublicID, "error", err)
		}
	}
	zap.S().Infow("recording deleted", "recordingId", rec.ID.Hex(), "adminId", admin.ID.Hex())
	return nil
}
