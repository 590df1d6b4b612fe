package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document types
const (
	DocumentExhibit  = "exhibit"
	DocumentBrief    = "brief"
	DocumentEvidence = "evidence"
	DocumentOther    = "other"
)

// CaseDocument is metadata for a file attached to a case; bytes live in the asset store
type CaseDocument struct {
	ID           primitive.ObjectID `json:"id" bson:"_id"`
	CaseID       primitive.ObjectID `json:"caseId" bson:"caseId"`
	UploadedBy   primitive.ObjectID `json:"uploadedBy" bson:"uploadedBy"`
	FileName     string             `json:"fileName" bson:"fileName"`
	URL          string             `json:"url" bson:"url"`
	PublicID     string             `json:"publicId" bson:"publicId"`
	ContentType  string             `json:"contentType,omitempty" bson:"contentType,omitempty"`
	Size         int64              `json:"size" bson:"size"`
	DocumentType string             `json:"documentType" bson:"documentType"`
	IsDeleted    bool               `json:"isDeleted" bson:"isDeleted"`
	DeletedAt    *time.Time         `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}

// Recording statuses
const (
	RecordingProcessing = "processing"
	RecordingAvailable  = "available"
	RecordingFailed     = "failed"
	RecordingDeleted    = "deleted"
)

// TrialRecording is a recording of a trial meeting
type TrialRecording struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	CaseID          primitive.ObjectID `json:"caseId" bson:"caseId"`
	MeetingID       primitive.ObjectID `json:"meetingId" bson:"meetingId"`
	URL             string             `json:"url,omitempty" bson:"url,omitempty"`
	PublicID        string             `json:"publicId,omitempty" bson:"publicId,omitempty"`
	DurationSeconds int                `json:"durationSeconds" bson:"durationSeconds"`
	Status          string             `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}
