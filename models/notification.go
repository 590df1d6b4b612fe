package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationCaseSubmitted       = "case_submitted"
	NotificationCaseApproved        = "case_approved"
	NotificationCaseRejected        = "case_rejected"
	NotificationRescheduleRequired  = "reschedule_required"
	NotificationRescheduleConfirmed = "reschedule_confirmed"
	NotificationApplicationReceived = "application_received"
	NotificationApplicationApproved = "application_approved"
	NotificationApplicationRejected = "application_rejected"
	NotificationTrialStarting       = "trial_starting"
	NotificationVerdictRequested    = "verdict_requested"
	NotificationVerdictSubmitted    = "verdict_submitted"
	NotificationPaymentProcessed    = "payment_processed"
	NotificationIncidentReported    = "incident_reported"
	NotificationSystem              = "system"
)

var notificationTypes = map[string]bool{
	NotificationCaseSubmitted:       true,
	NotificationCaseApproved:        true,
	NotificationCaseRejected:        true,
	NotificationRescheduleRequired:  true,
	NotificationRescheduleConfirmed: true,
	NotificationApplicationReceived: true,
	NotificationApplicationApproved: true,
	NotificationApplicationRejected: true,
	NotificationTrialStarting:       true,
	NotificationVerdictRequested:    true,
	NotificationVerdictSubmitted:    true,
	NotificationPaymentProcessed:    true,
	NotificationIncidentReported:    true,
	NotificationSystem:              true,
}

// IsValidNotificationType reports whether t is a known notification type
func IsValidNotificationType(t string) bool {
	return notificationTypes[t]
}

// Notification is an append-only message addressed to one user
type Notification struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id"`
	UserID    primitive.ObjectID  `json:"userId" bson:"userId"`
	UserType  string              `json:"userType" bson:"userType"`
	CaseID    *primitive.ObjectID `json:"caseId,omitempty" bson:"caseId,omitempty"`
	Type      string              `json:"type" bson:"type"`
	Title     string              `json:"title" bson:"title"`
	Message   string              `json:"message" bson:"message"`
	IsRead    bool                `json:"isRead" bson:"isRead"`
	ReadAt    *time.Time          `json:"readAt,omitempty" bson:"readAt,omitempty"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}

// ArchivedNotification is a notification moved to the shadow collection
type ArchivedNotification struct {
	Notification `bson:",inline"`
	ArchivedAt   time.Time `json:"archivedAt" bson:"archivedAt"`
}
