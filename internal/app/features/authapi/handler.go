// Package authapi provides the registration, login, and logout endpoints.
//
// Endpoints:
//   - POST /auth/register - Create a user account
//   - POST /auth/login    - Verify credentials, establish a session, return a signed token
//   - POST /auth/logout   - Destroy the session
package authapi

import (
	"errors"
	"net/http"
	"time"

	userstore "github.com/klicktools/klicktools/internal/app/store/users"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/authutil"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/normalize"
	"github.com/klicktools/klicktools/internal/app/system/sanitize"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles authentication API requests.
type Handler struct {
	userStore   *userstore.Store
	sessionMgr  *auth.SessionManager
	tokens      *auth.TokenManager
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new authapi Handler.
func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	tokens *auth.TokenManager,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userStore:   userstore.New(db),
		sessionMgr:  sessionMgr,
		tokens:      tokens,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// register handles POST /auth/register.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	in.Email = normalize.Email(in.Email)
	in.Name = sanitize.Text(in.Name)
	if in.Email == "" || in.Name == "" || in.Password == "" {
		jsonutil.BadRequest(w, "email, name, and password are required")
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "registration failed")
		return
	}

	u := models.NewUser(in.Email, in.Name, time.Now())
	u.PasswordHash = &hash

	created, err := h.userStore.Create(r.Context(), u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			jsonutil.Conflict(w, "an account with this email already exists")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		jsonutil.InternalError(w, "registration failed")
		return
	}

	h.auditLogger.UserRegistered(r.Context(), r, created.ID, created.Email)
	jsonutil.Created(w, map[string]any{"user": created})
}

// login handles POST /auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	in.Email = normalize.Email(in.Email)
	if in.Email == "" || in.Password == "" {
		jsonutil.BadRequest(w, "email and password are required")
		return
	}

	u, err := h.userStore.GetByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.auditLogger.LoginFailedUserNotFound(r.Context(), r, in.Email)
			jsonutil.Unauthorized(w, "invalid email or password")
			return
		}
		h.logger.Error("failed to look up user", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	if u.PasswordHash == nil || !authutil.CheckPassword(in.Password, *u.PasswordHash) {
		h.auditLogger.LoginFailedWrongPassword(r.Context(), r, u.ID, u.Email)
		jsonutil.Unauthorized(w, "invalid email or password")
		return
	}

	if err := h.sessionMgr.CreateSession(w, r, u.ID, u.Role); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	token, _, err := h.tokens.Issue(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		jsonutil.InternalError(w, "login failed")
		return
	}

	now := time.Now()
	if err := h.userStore.TouchLastLogin(r.Context(), u.ID, now); err != nil {
		h.logger.Warn("failed to record login time",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
	}
	u.LastLoginAt = &now

	h.auditLogger.LoginSuccess(r.Context(), r, u.ID, u.Email)
	jsonutil.OK(w, map[string]any{
		"token": token,
		"user":  u,
	})
}

// logout handles POST /auth/logout.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.Logout(r.Context(), r, u.ID)
	}
	h.sessionMgr.DestroySession(w, r)
	jsonutil.OK(w, map[string]any{"message": "logged out"})
}
