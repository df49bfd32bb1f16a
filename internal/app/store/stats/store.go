// internal/app/store/stats/store.go
package statsstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store runs the aggregation pipelines behind the admin dashboard.
type Store struct {
	tools     *mongo.Collection
	users     *mongo.Collection
	reviews   *mongo.Collection
	favorites *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		tools:     db.Collection("tools"),
		users:     db.Collection("users"),
		reviews:   db.Collection("reviews"),
		favorites: db.Collection("favorites"),
	}
}

// Totals holds the headline counters.
type Totals struct {
	Tools     int64 `json:"tools"`
	Users     int64 `json:"users"`
	Reviews   int64 `json:"reviews"`
	Favorites int64 `json:"favorites"`
	Featured  int64 `json:"featured"`
	WithAPI   int64 `json:"withApi"`
}

// Totals counts documents across the four collections plus the featured and
// API-enabled tool subsets.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error

	if t.Tools, err = s.tools.CountDocuments(ctx, bson.M{}); err != nil {
		return Totals{}, err
	}
	if t.Users, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return Totals{}, err
	}
	if t.Reviews, err = s.reviews.CountDocuments(ctx, bson.M{}); err != nil {
		return Totals{}, err
	}
	if t.Favorites, err = s.favorites.CountDocuments(ctx, bson.M{}); err != nil {
		return Totals{}, err
	}
	if t.Featured, err = s.tools.CountDocuments(ctx, bson.M{"featured": true}); err != nil {
		return Totals{}, err
	}
	if t.WithAPI, err = s.tools.CountDocuments(ctx, bson.M{"api_available": true}); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// AverageRating returns the mean of the denormalized tool ratings, counting
// only tools that have at least one review.
func (s *Store) AverageRating(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"review_count": bson.M{"$gt": 0}}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := s.tools.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var agg struct {
		Avg float64 `bson:"avg"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&agg); err != nil {
			return 0, err
		}
	}
	return agg.Avg, nil
}

// LabelCount is one bucket of a grouped breakdown.
type LabelCount struct {
	Label string `bson:"_id" json:"label"`
	Count int64  `bson:"count" json:"count"`
}

// TopCategories returns the most populated categories, largest first.
func (s *Store) TopCategories(ctx context.Context, limit int64) ([]LabelCount, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.groupBy(ctx, s.tools, "$category", limit)
}

// PricingBreakdown returns tool counts per pricing tier.
func (s *Store) PricingBreakdown(ctx context.Context) ([]LabelCount, error) {
	return s.groupBy(ctx, s.tools, "$pricing", 0)
}

// StatusBreakdown returns tool counts per lifecycle status.
func (s *Store) StatusBreakdown(ctx context.Context) ([]LabelCount, error) {
	return s.groupBy(ctx, s.tools, "$status", 0)
}

func (s *Store) groupBy(ctx context.Context, c *mongo.Collection, field string, limit int64) ([]LabelCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   field,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}

	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []LabelCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// MonthCount is one month of a growth series, keyed "YYYY-MM".
type MonthCount struct {
	Month string `bson:"_id" json:"month"`
	Count int64  `bson:"count" json:"count"`
}

// ToolGrowth returns tool creations per month over the trailing window.
func (s *Store) ToolGrowth(ctx context.Context, months int) ([]MonthCount, error) {
	return s.monthlyGrowth(ctx, s.tools, months)
}

// UserGrowth returns user registrations per month over the trailing window.
func (s *Store) UserGrowth(ctx context.Context, months int) ([]MonthCount, error) {
	return s.monthlyGrowth(ctx, s.users, months)
}

func (s *Store) monthlyGrowth(ctx context.Context, c *mongo.Collection, months int) ([]MonthCount, error) {
	if months <= 0 {
		months = 6
	}
	now := time.Now()
	// Start of the month, months-1 back, so the window includes the current month.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": start}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m",
				"date":   "$created_at",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []MonthCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
