// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a user's 1-5 rating plus optional comment for a tool.
// At most one review exists per (tool_id, user_email) pair, enforced by a
// unique index on the reviews collection.
type Review struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	ToolID    primitive.ObjectID `bson:"tool_id" json:"toolId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	UserEmail string             `bson:"user_email" json:"userEmail"`
	UserName  string             `bson:"user_name,omitempty" json:"userName,omitempty"`
	ToolName  string             `bson:"tool_name,omitempty" json:"toolName,omitempty"`

	Rating  int    `bson:"rating" json:"rating"` // 1-5
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Review rating bounds
const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

// IsValidReviewRating checks if a rating falls within the accepted range.
func IsValidReviewRating(rating int) bool {
	return rating >= MinReviewRating && rating <= MaxReviewRating
}
