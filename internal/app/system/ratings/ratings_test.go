package ratings

import (
	"context"
	"errors"
	"testing"

	reviewstore "github.com/klicktools/klicktools/internal/app/store/reviews"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/domain/models"
	"github.com/klicktools/klicktools/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestRound(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"whole number", 4.0, 4.0},
		{"exact half average", 3.5, 3.5},
		{"two review average", 3.0, 3.0},
		{"rounds down", 3.649999, 3.6},
		{"rounds up", 3.6666666, 3.7},
		{"three review average", 4.333333, 4.3},
		{"zero when no reviews", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Round(tc.in); got != tc.want {
				t.Fatalf("Round(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tool, err := toolstore.New(db).Create(ctx, models.Tool{
		Name:     "Aggregated Tool",
		Category: "Testing",
		Status:   models.StatusActive,
	})
	if err != nil {
		t.Fatalf("failed to seed tool: %v", err)
	}

	reviews := reviewstore.New(db)
	if _, err := reviews.Create(ctx, models.Review{
		ToolID: tool.ID, UserEmail: "alice@test.com", UserName: "Alice", Rating: 5,
	}); err != nil {
		t.Fatalf("failed to seed review: %v", err)
	}

	if err := svc.Recompute(ctx, tool.ID); err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	got, err := toolstore.New(db).GetByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("failed to load tool: %v", err)
	}
	if got.Rating != 5.0 || got.ReviewCount != 1 {
		t.Errorf("rating = %v count = %d, want 5.0 and 1", got.Rating, got.ReviewCount)
	}

	// The mutation and the recompute land together.
	err = svc.RecomputeWith(ctx, tool.ID, func(ctx context.Context) error {
		_, err := reviews.Create(ctx, models.Review{
			ToolID: tool.ID, UserEmail: "bob@test.com", UserName: "Bob", Rating: 2,
		})
		return err
	})
	if err != nil {
		t.Fatalf("recompute with mutation failed: %v", err)
	}
	got, err = toolstore.New(db).GetByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("failed to reload tool: %v", err)
	}
	if got.Rating != 3.5 || got.ReviewCount != 2 {
		t.Errorf("rating = %v count = %d, want 3.5 and 2", got.Rating, got.ReviewCount)
	}

	// A failing mutation aborts before the aggregate write.
	wantErr := errors.New("mutation rejected")
	if err := svc.RecomputeWith(ctx, tool.ID, func(context.Context) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("recompute error = %v, want %v", err, wantErr)
	}

	if err := svc.Recompute(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("recompute of unknown tool = %v, want %v", err, mongo.ErrNoDocuments)
	}
}
