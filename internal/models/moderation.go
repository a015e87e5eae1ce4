package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationRecord is one content analysis verdict, stored in MongoDB.
type ModerationRecord struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID       uint               `json:"user_id" bson:"user_id"`
	ContentType  string             `json:"content_type" bson:"content_type"` // post or comment
	Success      bool               `json:"success" bson:"success"`
	IsAccepted   bool               `json:"is_accepted" bson:"is_accepted"`
	Reason       string             `json:"reason,omitempty" bson:"reason,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
