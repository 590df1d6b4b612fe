package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incident types
const (
	IncidentTechnical    = "technical"
	IncidentConnectivity = "connectivity"
	IncidentConduct      = "conduct"
	IncidentOther        = "other"
)

// Incident severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident statuses
const (
	IncidentOpen     = "open"
	IncidentResolved = "resolved"
)

// TrialIncident is a problem reported during a trial session
type TrialIncident struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id"`
	CaseID       primitive.ObjectID  `json:"caseId" bson:"caseId"`
	MeetingID    *primitive.ObjectID `json:"meetingId,omitempty" bson:"meetingId,omitempty"`
	ReportedBy   primitive.ObjectID  `json:"reportedBy" bson:"reportedBy"`
	ReporterType string              `json:"reporterType" bson:"reporterType"`
	Type         string              `json:"incidentType" bson:"incidentType"`
	Severity     string              `json:"severity" bson:"severity"`
	Description  string              `json:"description" bson:"description"`
	Status       string              `json:"status" bson:"status"`
	Resolution   string              `json:"resolution,omitempty" bson:"resolution,omitempty"`
	ResolvedBy   *primitive.ObjectID `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time          `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
}
