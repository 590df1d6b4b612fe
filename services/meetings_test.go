package services

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

type pushed struct {
	target, event string
}

type fakeRealtime struct {
	users []pushed
	cases []pushed
}

func (r *fakeRealtime) PushToUser(userID, event string, _ interface{}) {
	r.users = append(r.users, pushed{userID, event})
}

func (r *fakeRealtime) BroadcastToCase(caseID, event string, _ interface{}) {
	r.cases = append(r.cases, pushed{caseID, event})
}

func TestCreateMeeting(t *testing.T) {
	rt := &fakeRealtime{}
	h := newHarness(t, Deps{Realtime: rt})
	attorney := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAttorney}
	c := warRoomCase(attorney.ID)
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())
	h.c("trial_meetings").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	h.c("juror_applications").On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return(cursorOf([]models.JurorApplication{{JurorID: primitive.NewObjectID()}}), nil)

	m, err := h.svc.Meetings.CreateMeeting(ctx, c.ID, attorney)
	assert.NoError(t, err)
	assert.Equal(t, models.MeetingActive, m.Status)
	assert.Contains(t, m.RoomName, "qv-")
	assert.Contains(t, rt.cases, pushed{c.ID.Hex(), EventMeetingStarted})
	assert.Len(t, rt.users, 1)
}

func TestCreateMeetingAlreadyRunning(t *testing.T) {
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := warRoomCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).
		Return(found(models.TrialMeeting{ID: primitive.NewObjectID(), CaseID: c.ID, Status: models.MeetingActive}))

	_, err := h.svc.Meetings.CreateMeeting(ctx, c.ID, admin)
	assert.True(t, IsConflict(err, CodeMeetingExists))
}

func TestCreateMeetingRaceCaughtByIndex(t *testing.T) {
	h := newHarness(t, Deps{})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := warRoomCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(missing())
	h.c("trial_meetings").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, duplicateKey())

	_, err := h.svc.Meetings.CreateMeeting(ctx, c.ID, admin)
	assert.True(t, IsConflict(err, CodeMeetingExists))
}

func TestJurorCannotStartMeeting(t *testing.T) {
	h := newHarness(t, Deps{})
	c := warRoomCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))

	_, err := h.svc.Meetings.CreateMeeting(ctx, c.ID, Actor{ID: primitive.NewObjectID(), Role: models.UserTypeJuror})
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestJoinMeetingTwiceReturnsOpenParticipation(t *testing.T) {
	h := newHarness(t, Deps{})
	juror := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeJuror}
	c := warRoomCase(primitive.NewObjectID())
	m := models.TrialMeeting{ID: primitive.NewObjectID(), CaseID: c.ID, Status: models.MeetingActive}
	open := models.TrialParticipant{ID: primitive.NewObjectID(), MeetingID: m.ID, UserID: juror.ID}
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("juror_applications").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(m))
	h.c("trial_participants").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(open))

	p, err := h.svc.Meetings.JoinMeeting(ctx, c.ID, juror, "Juror 3")
	assert.NoError(t, err)
	assert.Equal(t, open.ID, p.ID)
	h.c("trial_participants").AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinMeetingNeedsSeat(t *testing.T) {
	h := newHarness(t, Deps{})
	c := warRoomCase(primitive.NewObjectID())
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("juror_applications").On("CountDocuments", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := h.svc.Meetings.JoinMeeting(ctx, c.ID, Actor{ID: primitive.NewObjectID(), Role: models.UserTypeJuror}, "")
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestEndMeetingClosesParticipants(t *testing.T) {
	rt := &fakeRealtime{}
	h := newHarness(t, Deps{Realtime: rt})
	admin := Actor{ID: primitive.NewObjectID(), Role: models.UserTypeAdmin}
	c := warRoomCase(primitive.NewObjectID())
	m := models.TrialMeeting{ID: primitive.NewObjectID(), CaseID: c.ID, Status: models.MeetingActive}
	h.c("cases").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(c))
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(found(m))
	h.c("trial_meetings").On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(updated(1), nil)
	h.c("trial_participants").On("UpdateMany", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 3, ModifiedCount: 3}, nil)

	got, err := h.svc.Meetings.EndMeeting(ctx, c.ID, admin)
	assert.NoError(t, err)
	assert.Equal(t, models.MeetingEnded, got.Status)
	assert.NotNil(t, got.EndedAt)
	h.c("trial_participants").AssertNumberOfCalls(t, "UpdateMany", 1)
	assert.Contains(t, rt.cases, pushed{c.ID.Hex(), EventMeetingEnded})
}

func TestLeaveMeetingWithoutJoining(t *testing.T) {
	h := newHarness(t, Deps{})
	c := warRoomCase(primitive.NewObjectID())
	h.c("trial_meetings").On("FindOne", mock.Anything, mock.Anything, mock.Anything).
		Return(found(models.TrialMeeting{ID: primitive.NewObjectID(), CaseID: c.ID, Status: models.MeetingActive}))
	h.c("trial_participants").On("UpdateMany", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	err := h.svc.Meetings.LeaveMeeting(ctx, c.ID, Actor{ID: primitive.NewObjectID(), Role: models.UserTypeJuror})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReportIncidentValidates(t *testing.T) {
	h := newHarness(t, Deps{})

	_, err := h.svc.Meetings.ReportIncident(ctx, primitive.NewObjectID(), Actor{Role: models.UserTypeAdmin},
		IncidentInput{Type: "weather", Severity: "apocalyptic"})
	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.GreaterOrEqual(t, len(verr.Messages), 2)
	}
}
