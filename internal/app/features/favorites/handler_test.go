package favorites

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/domain/models"
	"github.com/klicktools/klicktools/internal/testutil"
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

func favoriteRequest(method string, toolID string, user testutil.TestUser) *http.Request {
	b, _ := json.Marshal(map[string]string{"toolId": toolID})
	req := httptest.NewRequest(method, "/favorites", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, user)
}

func isFavorited(t *testing.T, h *Handler, toolID string, user testutil.TestUser) bool {
	t.Helper()
	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/favorites?toolId="+toolID, nil), user)
	rec := httptest.NewRecorder()
	h.status(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		IsFavorited bool `json:"isFavorited"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.IsFavorited
}

func TestFavoriteToggle(t *testing.T) {
	h, db := newTestHandler(t)
	tool := seedTool(t, db, "Toggle Tool")
	user := testutil.RegularUser()

	if isFavorited(t, h, tool.ID.Hex(), user) {
		t.Error("tool should not be favorited initially")
	}

	rec := httptest.NewRecorder()
	h.create(rec, favoriteRequest(http.MethodPost, tool.ID.Hex(), user))
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if !isFavorited(t, h, tool.ID.Hex(), user) {
		t.Error("tool should be favorited after create")
	}

	// A second favorite of the same tool is a conflict.
	rec = httptest.NewRecorder()
	h.create(rec, favoriteRequest(http.MethodPost, tool.ID.Hex(), user))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = httptest.NewRecorder()
	h.remove(rec, favoriteRequest(http.MethodDelete, tool.ID.Hex(), user))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove status = %d, want %d", rec.Code, http.StatusOK)
	}

	if isFavorited(t, h, tool.ID.Hex(), user) {
		t.Error("tool should not be favorited after remove")
	}

	// Removing again is a 404, not a silent success.
	rec = httptest.NewRecorder()
	h.remove(rec, favoriteRequest(http.MethodDelete, tool.ID.Hex(), user))
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat remove status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreate_ToolNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.create(rec, favoriteRequest(http.MethodPost, primitive.NewObjectID().Hex(), testutil.RegularUser()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreate_InvalidToolID(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.create(rec, favoriteRequest(http.MethodPost, "not-an-id", testutil.RegularUser()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMine(t *testing.T) {
	h, db := newTestHandler(t)
	user := testutil.RegularUser()

	for _, name := range []string{"Fav One", "Fav Two"} {
		tool := seedTool(t, db, name)
		rec := httptest.NewRecorder()
		h.create(rec, favoriteRequest(http.MethodPost, tool.ID.Hex(), user))
		if rec.Code != http.StatusOK {
			t.Fatalf("create %q status = %d", name, rec.Code)
		}
	}

	req := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/user/favorites", nil), user)
	rec := httptest.NewRecorder()
	h.mine(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Favorites []models.Favorite `json:"favorites"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Favorites) != 2 {
		t.Errorf("favorites = %d, want 2", len(resp.Favorites))
	}
}
