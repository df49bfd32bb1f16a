// internal/domain/models/favorite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is a user's bookmark of a tool. At most one favorite exists per
// (tool_id, user_email) pair, enforced by a unique index on the favorites
// collection.
type Favorite struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	ToolID    primitive.ObjectID `bson:"tool_id" json:"toolId"`
	UserEmail string             `bson:"user_email" json:"userEmail"`

	// Denormalized for listing without a join.
	ToolName     string `bson:"tool_name,omitempty" json:"toolName,omitempty"`
	ToolCategory string `bson:"tool_category,omitempty" json:"toolCategory,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
