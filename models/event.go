package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Case event types
const (
	EventCaseCreated          = "case_created"
	EventCaseApproved         = "case_approved"
	EventCaseRejected         = "case_rejected"
	EventRescheduleRequested  = "reschedule_requested"
	EventRescheduleConfirmed  = "reschedule_confirmed"
	EventStatusChanged        = "status_changed"
	EventCaseDeleted          = "case_deleted"
	EventJuryChargeReleased   = "jury_charge_released"
	EventApplicationSubmitted = "application_submitted"
	EventApplicationDecided   = "application_decided"
	EventMeetingStarted       = "meeting_started"
	EventMeetingEnded         = "meeting_ended"
	EventVerdictSubmitted     = "verdict_submitted"
	EventPaymentRecorded      = "payment_recorded"
	EventIncidentReported     = "incident_reported"
	EventDocumentAdded        = "document_added"
)

// Event is an append-only log entry keyed by case
type Event struct {
	ID          primitive.ObjectID     `json:"id" bson:"_id"`
	CaseID      primitive.ObjectID     `json:"caseId" bson:"caseId"`
	Type        string                 `json:"eventType" bson:"eventType"`
	Description string                 `json:"description" bson:"description"`
	ActorID     *primitive.ObjectID    `json:"actorId,omitempty" bson:"actorId,omitempty"`
	ActorType   string                 `json:"actorType,omitempty" bson:"actorType,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
}

// ArchivedEvent is an event moved to the shadow collection
type ArchivedEvent struct {
	Event      `bson:",inline"`
	ArchivedAt time.Time `json:"archivedAt" bson:"archivedAt"`
}
