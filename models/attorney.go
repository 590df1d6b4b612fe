package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attorney holds the structure for the attorneys collection in mongo
type Attorney struct {
	ID               primitive.ObjectID `json:"id" bson:"_id"`
	FirstName        string             `json:"firstName" bson:"firstName"`
	LastName         string             `json:"lastName" bson:"lastName"`
	Email            string             `json:"email" bson:"email"`
	PasswordHash     string             `json:"-" bson:"passwordHash"`
	LawFirm          string             `json:"lawFirmName" bson:"lawFirmName"`
	Phone            string             `json:"phoneNumber" bson:"phoneNumber"`
	State            string             `json:"state" bson:"state"`
	BarNumber        string             `json:"stateBarNumber" bson:"stateBarNumber"`
	TimeZone         string             `json:"timeZone,omitempty" bson:"timeZone,omitempty"`
	IsVerified       bool               `json:"isVerified" bson:"isVerified"`
	StripeCustomerID string             `json:"-" bson:"stripeCustomerId,omitempty"`
	IsDeleted        bool               `json:"isDeleted" bson:"isDeleted"`
	LastLoginAt      *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// FullName joins the attorney's first and last name
func (a Attorney) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
