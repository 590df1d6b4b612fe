package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Juror application statuses
const (
	ApplicationPending   = "pending"
	ApplicationApproved  = "approved"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

// JurorApplication links a juror to a case
type JurorApplication struct {
	ID                 primitive.ObjectID  `json:"id" bson:"_id"`
	JurorID            primitive.ObjectID  `json:"jurorId" bson:"jurorId"`
	CaseID             primitive.ObjectID  `json:"caseId" bson:"caseId"`
	Status             string              `json:"status" bson:"status"`
	VoirDire1Responses []VoirDireResponse  `json:"voirDire1Responses" bson:"voirDire1Responses"`
	VoirDire2Responses []VoirDireResponse  `json:"voirDire2Responses" bson:"voirDire2Responses"`
	ReviewedBy         *primitive.ObjectID `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time          `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ReviewNotes        string              `json:"reviewNotes,omitempty" bson:"reviewNotes,omitempty"`
	AppliedAt          time.Time           `json:"appliedAt" bson:"appliedAt"`
	UpdatedAt          time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// VoirDireResponse is a juror's answer to one screening question
type VoirDireResponse struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}
