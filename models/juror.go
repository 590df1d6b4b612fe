package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Juror holds the structure for the jurors collection in mongo
type Juror struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	PasswordHash       string             `json:"-" bson:"passwordHash"`
	Phone              string             `json:"phoneNumber" bson:"phoneNumber"`
	State              string             `json:"state" bson:"state"`
	County             string             `json:"county" bson:"county"`
	IsVerified         bool               `json:"isVerified" bson:"isVerified"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	OnboardingComplete bool               `json:"onboardingComplete" bson:"onboardingComplete"`
	PaymentPreference  string             `json:"paymentPreference,omitempty" bson:"paymentPreference,omitempty"`
	StripeAccountID    string             `json:"-" bson:"stripeAccountId,omitempty"`
	IsDeleted          bool               `json:"isDeleted" bson:"isDeleted"`
	LastLoginAt        *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}
