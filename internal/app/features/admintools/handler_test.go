package admintools

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/store/audit"
	favoritestore "github.com/klicktools/klicktools/internal/app/store/favorites"
	reviewstore "github.com/klicktools/klicktools/internal/app/store/reviews"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
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
	logger := zap.NewNop()

	fileStorage, err := storage.NewLocal(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/files",
	})
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "off", Admin: "off"})
	return NewHandler(db, fileStorage, auditLogger, logger), db
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

func jsonRequest(method, target string, body map[string]any, user testutil.TestUser) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithUser(req, user)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCreate(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := testutil.AdminUser()

	t.Run("explicit status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.create(rec, jsonRequest(http.MethodPost, "/admin/tools", map[string]any{
			"name": "Prebuilt", "description": "Already live", "category": "Infra", "status": "active",
		}, admin))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp struct {
			Tool models.Tool `json:"tool"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Tool.Status != models.StatusActive {
			t.Errorf("status = %q, want %q", resp.Tool.Status, models.StatusActive)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.create(rec, jsonRequest(http.MethodPost, "/admin/tools", map[string]any{
			"name": "Odd", "description": "x", "category": "y", "status": "launched",
		}, admin))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestUpdate(t *testing.T) {
	h, db := newTestHandler(t)
	admin := testutil.AdminUser()
	tool := seedTool(t, db, "Editable Tool")
	seedTool(t, db, "Occupied Name")

	t.Run("partial update", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/admin/tools/"+tool.ID.Hex(), map[string]any{
			"description": "Rewritten description",
			"featured":    true,
		}, admin)
		req = withURLParam(req, "id", tool.ID.Hex())
		rec := httptest.NewRecorder()

		h.update(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Tool models.Tool `json:"tool"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Tool.Description != "Rewritten description" {
			t.Errorf("description = %q", resp.Tool.Description)
		}
		if !resp.Tool.Featured {
			t.Error("featured should be true")
		}
		if resp.Tool.Name != "Editable Tool" {
			t.Errorf("name should be unchanged, got %q", resp.Tool.Name)
		}
	})

	t.Run("rename onto existing name", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, "/admin/tools/"+tool.ID.Hex(), map[string]any{
			"name": "occupied name",
		}, admin)
		req = withURLParam(req, "id", tool.ID.Hex())
		rec := httptest.NewRecorder()

		h.update(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("missing tool", func(t *testing.T) {
		missing := primitive.NewObjectID().Hex()
		req := jsonRequest(http.MethodPut, "/admin/tools/"+missing, map[string]any{
			"description": "nope",
		}, admin)
		req = withURLParam(req, "id", missing)
		rec := httptest.NewRecorder()

		h.update(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestRemove_Cascades(t *testing.T) {
	h, db := newTestHandler(t)
	admin := testutil.AdminUser()
	tool := seedTool(t, db, "Doomed Tool")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	reviews := reviewstore.New(db)
	favorites := favoritestore.New(db)
	if _, err := reviews.Create(ctx, models.Review{
		ToolID: tool.ID, UserEmail: "reader@test.com", Rating: 4,
	}); err != nil {
		t.Fatalf("failed to seed review: %v", err)
	}
	if _, err := favorites.Create(ctx, models.Favorite{
		ToolID: tool.ID, UserEmail: "reader@test.com",
	}); err != nil {
		t.Fatalf("failed to seed favorite: %v", err)
	}

	req := testutil.WithUser(httptest.NewRequest(http.MethodDelete, "/admin/tools/"+tool.ID.Hex(), nil), admin)
	req = withURLParam(req, "id", tool.ID.Hex())
	rec := httptest.NewRecorder()

	h.remove(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	if _, err := toolstore.New(db).GetByID(ctx, tool.ID); err != mongo.ErrNoDocuments {
		t.Errorf("tool should be gone, got err = %v", err)
	}
	rc, err := reviews.Count(ctx, bson.M{"tool_id": tool.ID})
	if err != nil {
		t.Fatalf("failed to count reviews: %v", err)
	}
	if rc != 0 {
		t.Errorf("reviews remaining = %d, want 0", rc)
	}
	fc, err := favorites.Count(ctx, bson.M{"tool_id": tool.ID})
	if err != nil {
		t.Fatalf("failed to count favorites: %v", err)
	}
	if fc != 0 {
		t.Errorf("favorites remaining = %d, want 0", fc)
	}
}

func TestRemove_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := testutil.AdminUser()

	missing := primitive.NewObjectID().Hex()
	req := testutil.WithUser(httptest.NewRequest(http.MethodDelete, "/admin/tools/"+missing, nil), admin)
	req = withURLParam(req, "id", missing)
	rec := httptest.NewRecorder()

	h.remove(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUploadLogo(t *testing.T) {
	h, db := newTestHandler(t)
	admin := testutil.AdminUser()
	tool := seedTool(t, db, "Logoed Tool")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("logo", "logo.png")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	fw.Write([]byte("\x89PNG\r\n\x1a\nfakeimagedata"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/tools/"+tool.ID.Hex()+"/logo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, admin)
	req = withURLParam(req, "id", tool.ID.Hex())
	rec := httptest.NewRecorder()

	h.uploadLogo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	got, err := toolstore.New(db).GetByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("failed to reload tool: %v", err)
	}
	if got.Logo == "" {
		t.Error("tool logo should be set after upload")
	}
}
