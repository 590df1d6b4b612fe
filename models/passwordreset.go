package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PasswordReset stores a single-use password reset token for any user type
type PasswordReset struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	UserType  string             `json:"userType" bson:"userType"`
	TokenHash string             `json:"-" bson:"tokenHash"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	UsedAt    *time.Time         `json:"usedAt,omitempty" bson:"usedAt"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
