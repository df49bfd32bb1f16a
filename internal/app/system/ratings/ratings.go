// Package ratings maintains the denormalized rating and review_count fields
// on tool documents. Every review write or delete is followed by a recompute
// of the affected tool so the catalog never serves stale aggregates.
package ratings

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/klicktools/klicktools/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Round rounds an average rating to one decimal place.
func Round(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// Service recomputes tool rating aggregates from the reviews collection.
type Service struct {
	db      *mongo.Database
	reviews *mongo.Collection
	tools   *mongo.Collection
	logger  *zap.Logger
}

// NewService creates a rating service bound to the given database.
func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		reviews: db.Collection("reviews"),
		tools:   db.Collection("tools"),
		logger:  logger,
	}
}

// Recompute recalculates rating and review_count for one tool from its
// reviews and writes the result to the tool document.
func (s *Service) Recompute(ctx context.Context, toolID primitive.ObjectID) error {
	return s.RecomputeWith(ctx, toolID, nil)
}

// RecomputeWith runs mutate followed by the recompute for toolID as one
// transaction where the deployment supports one, so the review write and the
// aggregate it invalidates commit together. On standalone servers the same
// steps run in order without transactional guarantees. A nil mutate runs the
// recompute alone.
func (s *Service) RecomputeWith(ctx context.Context, toolID primitive.ObjectID, mutate func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		if mutate != nil {
			if err := mutate(ctx); err != nil {
				return err
			}
		}
		return s.recompute(ctx, toolID)
	})
}

func (s *Service) recompute(ctx context.Context, toolID primitive.ObjectID) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tool_id": toolID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate reviews: %w", err)
	}
	defer cur.Close(ctx)

	var agg struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	// No reviews left means the aggregate returns no document and the tool
	// resets to 0 / 0.
	if cur.Next(ctx) {
		if err := cur.Decode(&agg); err != nil {
			return fmt.Errorf("decode rating aggregate: %w", err)
		}
	}

	res, err := s.tools.UpdateOne(ctx,
		bson.M{"_id": toolID},
		bson.M{"$set": bson.M{
			"rating":       Round(agg.Avg),
			"review_count": agg.Count,
			"updated_at":   time.Now(),
		}})
	if err != nil {
		return fmt.Errorf("update tool rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
