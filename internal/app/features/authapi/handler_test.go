package authapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klicktools/klicktools/internal/app/store/audit"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr := testutil.NewSessionManager(t)
	tokens, err := auth.NewTokenManager("test-jwt-key-0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "off", Admin: "off"})

	return NewHandler(db, sessionMgr, tokens, auditLogger, logger)
}

func postJSON(target string, body map[string]any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	h := newTestHandler(t)

	t.Run("success", func(t *testing.T) {
		req := postJSON("/auth/register", map[string]any{
			"email":    "New@Example.com",
			"name":     "New User",
			"password": "hunter2x",
		})
		rec := httptest.NewRecorder()

		h.register(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "new@example.com") {
			t.Errorf("response should contain normalized email, got %s", rec.Body.String())
		}
		if strings.Contains(rec.Body.String(), "hunter2x") {
			t.Error("response must not leak the password")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		req := postJSON("/auth/register", map[string]any{
			"email":    "NEW@example.com",
			"name":     "Other User",
			"password": "hunter2x",
		})
		rec := httptest.NewRecorder()

		h.register(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		req := postJSON("/auth/register", map[string]any{"email": "x@y.com"})
		rec := httptest.NewRecorder()

		h.register(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		req := postJSON("/auth/register", map[string]any{
			"email":    "weak@example.com",
			"name":     "Weak",
			"password": "123",
		})
		rec := httptest.NewRecorder()

		h.register(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	reg := postJSON("/auth/register", map[string]any{
		"email":    "member@example.com",
		"name":     "Member",
		"password": "correct-horse",
	})
	rec := httptest.NewRecorder()
	h.register(rec, reg)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup register failed: %d %s", rec.Code, rec.Body.String())
	}

	t.Run("success returns token and user", func(t *testing.T) {
		req := postJSON("/auth/login", map[string]any{
			"email":    "Member@Example.com",
			"password": "correct-horse",
		})
		rec := httptest.NewRecorder()

		h.login(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp struct {
			Token string          `json:"token"`
			User  json.RawMessage `json:"user"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token == "" {
			t.Error("token should not be empty")
		}
		if len(resp.User) == 0 {
			t.Error("user should not be empty")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		req := postJSON("/auth/login", map[string]any{
			"email":    "member@example.com",
			"password": "wrong-horse",
		})
		rec := httptest.NewRecorder()

		h.login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		req := postJSON("/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "whatever1",
		})
		rec := httptest.NewRecorder()

		h.login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/auth/logout", testutil.RegularUser())
	rec := httptest.NewRecorder()

	h.logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
