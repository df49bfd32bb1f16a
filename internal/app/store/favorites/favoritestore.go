// internal/app/store/favorites/favoritestore.go
package favoritestore

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

// ErrDuplicateFavorite is returned when the (tool, user) pair is already
// favorited. The unique index on (tool_id, user_email) is the authority.
var ErrDuplicateFavorite = errors.New("tool is already favorited")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("favorites")}
}

// Create inserts a new favorite.
// Returns ErrDuplicateFavorite if the user already favorited the tool.
func (s *Store) Create(ctx context.Context, f models.Favorite) (models.Favorite, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Favorite{}, ErrDuplicateFavorite
		}
		return models.Favorite{}, err
	}
	return f, nil
}

// Exists reports whether the user has favorited the tool.
func (s *Store) Exists(ctx context.Context, toolID primitive.ObjectID, userEmail string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"tool_id": toolID, "user_email": userEmail}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// DeleteByPair removes a user's favorite of a tool.
// Returns mongo.ErrNoDocuments if the favorite does not exist.
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

// DeleteByID removes a favorite by its own ID (moderation path).
// Returns mongo.ErrNoDocuments if the favorite does not exist.
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

// GetByID loads a favorite by its own ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Favorite, error) {
	var f models.Favorite
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteByTool removes every favorite of a tool (cascade on tool deletion).
// Returns the number removed.
func (s *Store) DeleteByTool(ctx context.Context, toolID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"tool_id": toolID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByEmail returns a user's favorites, newest first.
func (s *Store) ListByEmail(ctx context.Context, userEmail string, opts ...*options.FindOptions) ([]models.Favorite, error) {
	return s.list(ctx, bson.M{"user_email": userEmail}, opts...)
}

// ListAll returns every favorite, newest first (moderation path).
func (s *Store) ListAll(ctx context.Context, opts ...*options.FindOptions) ([]models.Favorite, error) {
	return s.list(ctx, bson.M{}, opts...)
}

func (s *Store) list(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Favorite, error) {
	opts = append(opts, options.Find().SetSort(storeutil.NewestFirst()))
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var favorites []models.Favorite
	if err := cur.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// Count returns the number of favorites matching a raw filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
