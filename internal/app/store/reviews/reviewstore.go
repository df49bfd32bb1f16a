// internal/app/store/reviews/reviewstore.go
package reviewstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateReview is returned when the (tool, user) pair already has a
// review. The unique index on (tool_id, user_email) is the authority; two
// concurrent inserts race against the index, not an existence check.
var ErrDuplicateReview = errors.New("you have already reviewed this tool")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// Create inserts a new review.
// Returns ErrDuplicateReview if the user already reviewed the tool.
func (s *Store) Create(ctx context.Context, rv models.Review) (models.Review, error) {
	rv.ID = primitive.NewObjectID()
	now := time.Now()
	rv.CreatedAt = now
	rv.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, rv); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Review{}, ErrDuplicateReview
		}
		return models.Review{}, err
	}
	return rv, nil
}

// GetByPair loads the review a user left for a tool.
// Returns mongo.ErrNoDocuments if none exists.
func (s *Store) GetByPair(ctx context.Context, toolID primitive.ObjectID, userEmail string) (*models.Review, error) {
	var rv models.Review
	err := s.c.FindOne(ctx, bson.M{"tool_id": toolID, "user_email": userEmail}).Decode(&rv)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// UpdateByPair updates the rating and comment of a user's review of a tool.
// Returns mongo.ErrNoDocuments if the review does not exist.
func (s *Store) UpdateByPair(ctx context.Context, toolID primitive.ObjectID, userEmail string, rating int, comment string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"tool_id": toolID, "user_email": userEmail},
		bson.M{"$set": bson.M{
			"rating":     rating,
			"comment":    comment,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByPair removes a user's review of a tool.
// Returns mongo.ErrNoDocuments if the review does not exist.
func (s *Store) DeleteByPair(ctx context.Context, toolID primitive.ObjectID, userEmail string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"tool_id": toolID, "user_email": userEmail})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetByID loads a review by its own ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var rv models.Review
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&rv); err != nil {
		return nil, err
	}
	return &rv, nil
}

// DeleteByID removes a review by its own ID (moderation path).
// Returns mongo.ErrNoDocuments if the review does not exist.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByTool removes every review of a tool (cascade on tool deletion).
// Returns the number removed.
func (s *Store) DeleteByTool(ctx context.Context, toolID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"tool_id": toolID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByTool returns a tool's reviews, newest first.
func (s *Store) ListByTool(ctx context.Context, toolID primitive.ObjectID, opts ...*options.FindOptions) ([]models.Review, error) {
	return s.list(ctx, bson.M{"tool_id": toolID}, opts...)
}

// ListByEmail returns a user's reviews, newest first.
func (s *Store) ListByEmail(ctx context.Context, userEmail string, opts ...*options.FindOptions) ([]models.Review, error) {
	return s.list(ctx, bson.M{"user_email": userEmail}, opts...)
}

// ListAll returns every review, newest first (moderation path).
func (s *Store) ListAll(ctx context.Context, opts ...*options.FindOptions) ([]models.Review, error) {
	return s.list(ctx, bson.M{}, opts...)
}

func (s *Store) list(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Review, error) {
	opts = append(opts, options.Find().SetSort(storeutil.NewestFirst()))
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Count returns the number of reviews matching a raw filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
