package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
	PaymentCancelled  = "cancelled"
)

// Payment types
const (
	PaymentTypeCaseFee     = "case_fee"
	PaymentTypeJurorPayout = "juror_payout"
	PaymentTypeRefund      = "refund"
)

// Payment is a financial transaction tied to a case and a user
type Payment struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id"`
	CaseID            primitive.ObjectID  `json:"caseId" bson:"caseId"`
	UserID            primitive.ObjectID  `json:"userId" bson:"userId"`
	UserType          string              `json:"userType" bson:"userType"`
	Type              string              `json:"type" bson:"type"`
	Amount            float64             `json:"amount" bson:"amount"`
	Currency          string              `json:"currency" bson:"currency"`
	Method            string              `json:"method" bson:"method"`
	Status            string              `json:"status" bson:"status"`
	ExternalID        string              `json:"externalId,omitempty" bson:"externalId,omitempty"`
	OriginalPaymentID *primitive.ObjectID `json:"originalPaymentId,omitempty" bson:"originalPaymentId,omitempty"`
	Description       string              `json:"description,omitempty" bson:"description,omitempty"`
	FailureReason     string              `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	ProcessedAt       *time.Time          `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// IsValidPaymentStatus reports whether s is one of the payment statuses
func IsValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}
