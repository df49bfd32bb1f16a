// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Paginate builds find options for a 1-based page. Limits outside
// (0, maxLimit] fall back to sane values.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if page <= 0 {
		page = 1
	}
	return options.Find().SetLimit(limit).SetSkip((page - 1) * limit)
}

// NewestFirst sorts on the creation timestamp, most recent first.
func NewestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}
