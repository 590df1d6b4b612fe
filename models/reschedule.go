package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reschedule request statuses
const (
	RescheduleStatusPending   = "pending"
	RescheduleStatusApproved  = "approved"
	RescheduleStatusRejected  = "rejected"
	RescheduleStatusConfirmed = "confirmed"
	RescheduleStatusCancelled = "cancelled"
)

// AttorneyRescheduleRequest is an attorney asking to move an approved case
type AttorneyRescheduleRequest struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id"`
	CaseID        primitive.ObjectID  `json:"caseId" bson:"caseId"`
	AttorneyID    primitive.ObjectID  `json:"attorneyId" bson:"attorneyId"`
	CurrentDate   string              `json:"currentDate" bson:"currentDate"`
	CurrentTime   string              `json:"currentTime" bson:"currentTime"`
	RequestedDate string              `json:"requestedDate" bson:"requestedDate"`
	RequestedTime string              `json:"requestedTime" bson:"requestedTime"`
	Reason        string              `json:"reason" bson:"reason"`
	Status        string              `json:"status" bson:"status"`
	AdminResponse string              `json:"adminResponse,omitempty" bson:"adminResponse,omitempty"`
	ReviewedBy    *primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time          `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CaseRescheduleRequest records an admin-initiated reschedule of a case
type CaseRescheduleRequest struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	CaseID         primitive.ObjectID `json:"caseId" bson:"caseId"`
	RequestedBy    primitive.ObjectID `json:"requestedBy" bson:"requestedBy"`
	AlternateSlots []TimeSlot         `json:"alternateSlots" bson:"alternateSlots"`
	OriginalDate   string             `json:"originalDate" bson:"originalDate"`
	OriginalTime   string             `json:"originalTime" bson:"originalTime"`
	Reason         string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Status         string             `json:"status" bson:"status"`
	SelectedSlot   *TimeSlot          `json:"selectedSlot,omitempty" bson:"selectedSlot,omitempty"`
	ConfirmedAt    *time.Time         `json:"confirmedAt,omitempty" bson:"confirmedAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}
