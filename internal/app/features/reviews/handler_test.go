package reviews

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/domain/models"
	"github.com/klicktools/klicktools/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewHandler(db, zap.NewNop()), db
}

func seedTool(t *testing.T, db *mongo.Database, name string) models.Tool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := toolstore.New(db).Create(ctx, models.Tool{
		Name:        name,
		Description: "A tool for testing",
		Category:    "Testing",
		Status:      models.StatusActive,
	})
	if err != nil {
		t.Fatalf("failed to seed tool: %v", err)
	}
	return created
}

func loadTool(t *testing.T, db *mongo.Database, id primitive.ObjectID) *models.Tool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tool, err := toolstore.New(db).GetByID(ctx, id)
	if err != nil {
		t.Fatalf("failed to load tool: %v", err)
	}
	return tool
}

func reviewRequest(method string, body map[string]any, user testutil.TestUser) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, "/reviews", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, user)
}

func TestReviewLifecycle_RatingAggregates(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Aggregate Tool")

	alice := testutil.TestUser{ID: primitive.NewObjectID().Hex(), Name: "Alice", Email: "alice@test.com", Role: "user"}
	bob := testutil.TestUser{ID: primitive.NewObjectID().Hex(), Name: "Bob", Email: "bob@test.com", Role: "user"}

	// Alice rates 4: average 4.0, count 1.
	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 4, "comment": "Solid",
	}, alice))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	got := loadTool(t, db, tool.ID)
	if got.Rating != 4.0 || got.ReviewCount != 1 {
		t.Errorf("after first review: rating = %v count = %d, want 4.0 and 1", got.Rating, got.ReviewCount)
	}

	// Bob rates 2: average 3.0, count 2.
	rec = httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 2,
	}, bob))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	got = loadTool(t, db, tool.ID)
	if got.Rating != 3.0 || got.ReviewCount != 2 {
		t.Errorf("after second review: rating = %v count = %d, want 3.0 and 2", got.Rating, got.ReviewCount)
	}

	// Alice updates to 5: average 3.5, count 2.
	rec = httptest.NewRecorder()
	h.update(rec, reviewRequest(http.MethodPut, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 5, "comment": "Even better now",
	}, alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	got = loadTool(t, db, tool.ID)
	if got.Rating != 3.5 || got.ReviewCount != 2 {
		t.Errorf("after update: rating = %v count = %d, want 3.5 and 2", got.Rating, got.ReviewCount)
	}

	// Alice deletes: only Bob's 2 remains.
	rec = httptest.NewRecorder()
	h.remove(rec, reviewRequest(http.MethodDelete, map[string]any{
		"toolId": tool.ID.Hex(),
	}, alice))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	got = loadTool(t, db, tool.ID)
	if got.Rating != 2.0 || got.ReviewCount != 1 {
		t.Errorf("after delete: rating = %v count = %d, want 2.0 and 1", got.Rating, got.ReviewCount)
	}

	// Bob deletes the last review: aggregates reset to zero.
	rec = httptest.NewRecorder()
	h.remove(rec, reviewRequest(http.MethodDelete, map[string]any{
		"toolId": tool.ID.Hex(),
	}, bob))
	if rec.Code != http.StatusOK {
		t.Fatalf("final delete status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	got = loadTool(t, db, tool.ID)
	if got.Rating != 0 || got.ReviewCount != 0 {
		t.Errorf("after final delete: rating = %v count = %d, want 0 and 0", got.Rating, got.ReviewCount)
	}
}

func TestCreate_RatingBounds(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Bounds Tool")
	user := testutil.RegularUser()

	for _, rating := range []int{0, 6, -1} {
		rec := httptest.NewRecorder()
		h.create(rec, reviewRequest(http.MethodPost, map[string]any{
			"toolId": tool.ID.Hex(), "rating": rating,
		}, user))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("rating %d: status = %d, want %d", rating, rec.Code, http.StatusBadRequest)
		}
	}

	// 1 and 5 are the valid extremes.
	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 1,
	}, user))
	if rec.Code != http.StatusCreated {
		t.Errorf("rating 1: status = %d, want %d", rec.Code, http.StatusCreated)
	}

	other := testutil.TestUser{ID: primitive.NewObjectID().Hex(), Name: "Other", Email: "other@test.com", Role: "user"}
	rec = httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 5,
	}, other))
	if rec.Code != http.StatusCreated {
		t.Errorf("rating 5: status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Duplicate Tool")
	user := testutil.RegularUser()

	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 3,
	}, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, want %d", rec.Code, http.StatusCreated)
	}

	rec = httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 5,
	}, user))
	if rec.Code != http.StatusConflict {
		t.Errorf("second create status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestCreate_ToolNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": primitive.NewObjectID().Hex(), "rating": 3,
	}, testutil.RegularUser()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreate_InvalidToolID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": "not-an-id", "rating": 3,
	}, testutil.RegularUser()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateAndDelete_Missing(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Missing Review Tool")
	user := testutil.RegularUser()

	rec := httptest.NewRecorder()
	h.update(rec, reviewRequest(http.MethodPut, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 3,
	}, user))
	if rec.Code != http.StatusNotFound {
		t.Errorf("update status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	h.remove(rec, reviewRequest(http.MethodDelete, map[string]any{
		"toolId": tool.ID.Hex(),
	}, user))
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// A mutation whose rating recompute cannot land must not report success.
func TestUpdate_ToolDeletedUnderneath(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Vanishing Tool")
	user := testutil.RegularUser()

	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 4,
	}, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := db.Collection("tools").DeleteOne(ctx, bson.M{"_id": tool.ID}); err != nil {
		t.Fatalf("failed to delete tool: %v", err)
	}

	rec = httptest.NewRecorder()
	h.update(rec, reviewRequest(http.MethodPut, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 5,
	}, user))
	if rec.Code != http.StatusNotFound {
		t.Errorf("update status = %d, want %d: %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}
}

func TestList(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Listed Tool")
	user := testutil.RegularUser()

	rec := httptest.NewRecorder()
	h.create(rec, reviewRequest(http.MethodPost, map[string]any{
		"toolId": tool.ID.Hex(), "rating": 4, "comment": "Nice",
	}, user))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	t.Run("by tool", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reviews?toolId="+tool.ID.Hex(), nil)
		rec := httptest.NewRecorder()
		h.list(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Reviews []models.Review `json:"reviews"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Reviews) != 1 {
			t.Errorf("reviews = %d, want 1", len(resp.Reviews))
		}
	})

	t.Run("missing filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
		rec := httptest.NewRecorder()
		h.list(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("mine", func(t *testing.T) {
		req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/user/reviews", nil), user)
		rec := httptest.NewRecorder()
		h.mine(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp struct {
			Reviews []models.Review `json:"reviews"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Reviews) != 1 {
			t.Errorf("reviews = %d, want 1", len(resp.Reviews))
		}
	})
}
