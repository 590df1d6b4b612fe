package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin represents an administrative user who reviews cases and applications
type Admin struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Active       bool               `bson:"active" json:"active"`
	Roles        []string           `bson:"roles" json:"roles"`
	LastLoginAt  *time.Time         `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LoginAttempt is one login try, kept for lockout decisions
type LoginAttempt struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Email     string             `bson:"email" json:"email"`
	UserType  string             `bson:"userType" json:"userType"`
	Success   bool               `bson:"success" json:"success"`
	IPAddress string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// SchedulerLock is a lease on a background job shared by all instances
type SchedulerLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}
