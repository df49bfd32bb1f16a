// internal/app/store/tools/toolstore.go
package toolstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/klicktools/klicktools/internal/app/system/normalize"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateName is returned when a tool with the same case-insensitive
	// name already exists. The unique name_ci index is the authority.
	ErrDuplicateName = errors.New("a tool with this name already exists")
	errBadPricing    = errors.New("invalid pricing")
	errBadStatus     = errors.New("invalid status")
)

// Sort orders accepted by List.
const (
	SortNewest     = "newest"
	SortRating     = "rating"
	SortName       = "name"
	SortPopularity = "popularity"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tools")}
}

// GetByID loads a tool by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Tool, error) {
	var t models.Tool
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByName looks up a tool by case/diacritic-insensitive name.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Tool, error) {
	var t models.Tool
	if err := s.c.FindOne(ctx, bson.M{"name_ci": text.Fold(name)}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new tool after normalizing & validating fields.
// Returns ErrDuplicateName if the name is taken.
func (s *Store) Create(ctx context.Context, t models.Tool) (models.Tool, error) {
	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(t.Name)
	t.NameCI = text.Fold(t.Name)

	if t.Pricing != "" {
		t.Pricing = normalize.Pricing(t.Pricing)
		if !models.IsValidPricing(t.Pricing) {
			return models.Tool{}, errBadPricing
		}
	}
	if t.Status == "" {
		t.Status = models.StatusPending
	}
	t.Status = normalize.Status(t.Status)
	if !models.IsValidToolStatus(t.Status) {
		return models.Tool{}, errBadStatus
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Tool{}, ErrDuplicateName
		}
		return models.Tool{}, err
	}
	return t, nil
}

// UpdateInput holds the optional fields for updating a tool.
// All fields are pointers - nil means "don't update this field".
type UpdateInput struct {
	Name         *string
	Description  *string
	URL          *string
	Website      *string
	Docs         *string
	Category     *string
	Subcategory  *string
	Tags         *[]string
	Logo         *string
	Color        *string
	Featured     *bool
	Pricing      *string
	Status       *string
	Pros         *[]string
	Cons         *[]string
	Features     *[]string
	APIAvailable *bool
	APIURL       *string
}

// Update updates a tool using optional fields. Only non-nil fields are
// written. Returns ErrDuplicateName when renaming onto an existing name and
// mongo.ErrNoDocuments when the tool does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{
		"updated_at": time.Now(),
	}

	if input.Name != nil {
		name := normalize.Name(*input.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.URL != nil {
		set["url"] = *input.URL
	}
	if input.Website != nil {
		set["website"] = *input.Website
	}
	if input.Docs != nil {
		set["documentation"] = *input.Docs
	}
	if input.Category != nil {
		set["category"] = *input.Category
	}
	if input.Subcategory != nil {
		set["subcategory"] = *input.Subcategory
	}
	if input.Tags != nil {
		set["tags"] = *input.Tags
	}
	if input.Logo != nil {
		set["logo"] = *input.Logo
	}
	if input.Color != nil {
		set["color"] = *input.Color
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}
	if input.Pricing != nil {
		pricing := normalize.Pricing(*input.Pricing)
		if !models.IsValidPricing(pricing) {
			return errBadPricing
		}
		set["pricing"] = pricing
	}
	if input.Status != nil {
		status := normalize.Status(*input.Status)
		if !models.IsValidToolStatus(status) {
			return errBadStatus
		}
		set["status"] = status
	}
	if input.Pros != nil {
		set["pros"] = *input.Pros
	}
	if input.Cons != nil {
		set["cons"] = *input.Cons
	}
	if input.Features != nil {
		set["features"] = *input.Features
	}
	if input.APIAvailable != nil {
		set["api_available"] = *input.APIAvailable
	}
	if input.APIURL != nil {
		set["api_url"] = *input.APIURL
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a tool by ID.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IncViews bumps the view counter for a tool.
func (s *Store) IncViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// IncClicks bumps the click counter for a tool.
func (s *Store) IncClicks(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"clicks": 1}})
	return err
}

// ListFilter describes the catalog listing query.
type ListFilter struct {
	Query        string   // free-text match on name, description, tags
	Category     string   // exact category
	Pricing      string   // exact pricing tier
	MinRating    *float64 // rating >= value
	Status       string   // exact status
	APIAvailable *bool
	Featured     *bool
	Sort         string // newest | rating | name | popularity (default)
}

func (f ListFilter) query() bson.M {
	filter := bson.M{}

	if f.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern}},
			{"description": bson.M{"$regex": pattern}},
			{"tags": bson.M{"$regex": pattern}},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Pricing != "" {
		filter["pricing"] = f.Pricing
	}
	if f.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *f.MinRating}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.APIAvailable != nil {
		filter["api_available"] = *f.APIAvailable
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	return filter
}

func (f ListFilter) sort() bson.D {
	switch f.Sort {
	case SortNewest:
		return bson.D{{Key: "created_at", Value: -1}}
	case SortRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}}
	case SortName:
		return bson.D{{Key: "name_ci", Value: 1}}
	default:
		// Popularity: featured tools first, then by rating and review volume.
		return bson.D{
			{Key: "featured", Value: -1},
			{Key: "rating", Value: -1},
			{Key: "review_count", Value: -1},
		}
	}
}

// List returns tools matching the filter in the filter's sort order.
func (s *Store) List(ctx context.Context, f ListFilter, opts ...*options.FindOptions) ([]models.Tool, error) {
	opts = append(opts, options.Find().SetSort(f.sort()))
	cur, err := s.c.Find(ctx, f.query(), opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tools []models.Tool
	if err := cur.All(ctx, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

// CountByFilter returns the number of tools matching the filter.
func (s *Store) CountByFilter(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// Count returns the number of tools matching a raw filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}

// CategoryCount is one entry of the category breakdown.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// Categories returns the distinct categories with their tool counts,
// ordered by count descending then category name.
func (s *Store) Categories(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "count", Value: -1},
			{Key: "_id", Value: 1},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []CategoryCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

