// Package adminusers provides the admin user management endpoints.
//
// Endpoints (all admin only):
//   - GET    /admin/users           - Paginated listing with search and role filter
//   - PUT    /admin/users           - Change a user's role
//   - DELETE /admin/users           - Delete a user account
//   - POST   /admin/create-user     - Provision an account directly
//   - POST   /admin/update-password - Reset an account's password
//
// Two self-protection rules apply: an admin may not change their own role,
// and may not delete their own account or another admin's account.
package adminusers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	userstore "github.com/klicktools/klicktools/internal/app/store/users"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/authutil"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/normalize"
	"github.com/klicktools/klicktools/internal/app/system/sanitize"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const pageSize = 20

// Handler handles admin user management requests.
type Handler struct {
	userStore   *userstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new adminusers Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		userStore:   userstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// list handles GET /admin/users?search=&role=&page=&limit=.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	search := normalize.QueryParam(q.Get("search"))
	role := normalize.Role(q.Get("role"))
	if role != "" && !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "invalid role")
		return
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if limit <= 0 {
		limit = pageSize
	}

	filter := userstore.SearchFilter(search, role)
	opts := storeutil.Paginate(limit, page).SetSort(storeutil.NewestFirst())

	users, err := h.userStore.Find(r.Context(), filter, opts)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		jsonutil.InternalError(w, "failed to load users")
		return
	}
	total, err := h.userStore.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count users", zap.Error(err))
		jsonutil.InternalError(w, "failed to load users")
		return
	}

	if users == nil {
		users = []models.User{}
	}
	jsonutil.OK(w, map[string]any{
		"users": users,
		"total": total,
	})
}

// updateRole handles PUT /admin/users.
func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	var in struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}
	role := normalize.Role(in.Role)
	if !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "invalid role")
		return
	}

	// An admin may not change their own role.
	if targetID.Hex() == actor.ID {
		jsonutil.BadRequest(w, "you cannot change your own role")
		return
	}

	target, err := h.userStore.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to update role")
		return
	}

	if err := h.userStore.UpdateRole(r.Context(), targetID, role); err != nil {
		h.logger.Error("failed to update role", zap.Error(err))
		jsonutil.InternalError(w, "failed to update role")
		return
	}

	h.auditLogger.UserRoleChanged(r.Context(), r, actor.UserID(), targetID, target.Role, role)
	jsonutil.OK(w, map[string]any{"message": "role updated"})
}

// remove handles DELETE /admin/users.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	var in struct {
		UserID string `json:"userId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	// An admin may not delete their own account.
	if targetID.Hex() == actor.ID {
		jsonutil.BadRequest(w, "you cannot delete your own account")
		return
	}

	target, err := h.userStore.GetByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete user")
		return
	}

	// Admin accounts cannot be deleted through this surface.
	if target.Role == models.RoleAdmin {
		jsonutil.BadRequest(w, "admin accounts cannot be deleted")
		return
	}

	if _, err := h.userStore.Delete(r.Context(), targetID); err != nil {
		h.logger.Error("failed to delete user", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete user")
		return
	}

	h.auditLogger.UserDeleted(r.Context(), r, actor.UserID(), targetID, target.Role)
	jsonutil.OK(w, map[string]any{"message": "user deleted"})
}

// createUser handles POST /admin/create-user.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	var in struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
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
	role := normalize.Role(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "invalid role")
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	u := models.NewUser(in.Email, in.Name, time.Now())
	u.Role = role
	u.PasswordHash = &hash

	created, err := h.userStore.Create(r.Context(), u)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			jsonutil.Conflict(w, "an account with this email already exists")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		jsonutil.InternalError(w, "failed to create user")
		return
	}

	h.auditLogger.UserCreated(r.Context(), r, actor.UserID(), created.ID, created.Role)
	jsonutil.Created(w, map[string]any{"user": created})
}

// updatePassword handles POST /admin/update-password.
func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

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
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	target, err := h.userStore.GetByEmail(r.Context(), in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to update password")
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "failed to update password")
		return
	}

	if err := h.userStore.UpdatePassword(r.Context(), target.ID, hash); err != nil {
		h.logger.Error("failed to update password", zap.Error(err))
		jsonutil.InternalError(w, "failed to update password")
		return
	}

	h.auditLogger.PasswordReset(r.Context(), r, actor.UserID(), target.ID)
	jsonutil.OK(w, map[string]any{"message": "password updated"})
}
