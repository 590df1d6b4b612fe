package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verdict stores one juror's answers to a case's jury charge
type Verdict struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`
	CaseID      primitive.ObjectID `json:"caseId" bson:"caseId"`
	JurorID     primitive.ObjectID `json:"jurorId" bson:"jurorId"`
	JurorName   string             `json:"jurorName" bson:"jurorName"`
	Responses   map[string]string  `json:"responses" bson:"responses"` // questionId -> answer
	IsSubmitted bool               `json:"isSubmitted" bson:"isSubmitted"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
