package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting statuses
const (
	MeetingActive = "active"
	MeetingEnded  = "ended"
)

// Participant types
const (
	UserTypeAdmin    = "admin"
	UserTypeAttorney = "attorney"
	UserTypeJuror    = "juror"
)

// TrialMeeting is the virtual courtroom for a case
type TrialMeeting struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	CaseID    primitive.ObjectID `json:"caseId" bson:"caseId"`
	RoomName  string             `json:"roomName" bson:"roomName"`
	Status    string             `json:"status" bson:"status"`
	StartedBy primitive.ObjectID `json:"startedBy" bson:"startedBy"`
	StartedAt time.Time          `json:"startedAt" bson:"startedAt"`
	EndedAt   *time.Time         `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// TrialParticipant tracks one join of a user to a meeting; active while LeftAt is nil
type TrialParticipant struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	MeetingID   primitive.ObjectID `json:"meetingId" bson:"meetingId"`
	CaseID      primitive.ObjectID `json:"caseId" bson:"caseId"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	UserType    string             `json:"userType" bson:"userType"`
	DisplayName string             `json:"displayName" bson:"displayName"`
	JoinedAt    time.Time          `json:"joinedAt" bson:"joinedAt"`
	LeftAt      *time.Time         `json:"leftAt,omitempty" bson:"leftAt"`
}
