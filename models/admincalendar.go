package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockedSlot is a slot an admin removed from the bookable calendar
type BlockedSlot struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Date      string             `json:"date" bson:"date"`
	Time      string             `json:"time" bson:"time"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	BlockedBy primitive.ObjectID `json:"blockedBy" bson:"blockedBy"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
