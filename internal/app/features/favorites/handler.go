// Package favorites provides the per-user favorite endpoints.
//
// Endpoints:
//   - POST   /favorites       - Favorite a tool (one per user per tool)
//   - DELETE /favorites       - Remove a favorite
//   - GET    /favorites       - Favorite status for one tool
//   - GET    /user/favorites  - List the caller's favorites
package favorites

import (
	"errors"
	"net/http"

	favoritestore "github.com/klicktools/klicktools/internal/app/store/favorites"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles favorite API requests.
type Handler struct {
	favoriteStore *favoritestore.Store
	toolStore     *toolstore.Store
	logger        *zap.Logger
}

// NewHandler creates a new favorites Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		favoriteStore: favoritestore.New(db),
		toolStore:     toolstore.New(db),
		logger:        logger,
	}
}

// create handles POST /favorites.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in struct {
		ToolID string `json:"toolId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	toolID, err := primitive.ObjectIDFromHex(in.ToolID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	tool, err := h.toolStore.GetByID(r.Context(), toolID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "tool not found")
			return
		}
		h.logger.Error("failed to load tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to favorite tool")
		return
	}

	created, err := h.favoriteStore.Create(r.Context(), models.Favorite{
		ToolID:       toolID,
		UserEmail:    u.Email,
		ToolName:     tool.Name,
		ToolCategory: tool.Category,
	})
	if err != nil {
		if errors.Is(err, favoritestore.ErrDuplicateFavorite) {
			jsonutil.Conflict(w, "tool is already favorited")
			return
		}
		h.logger.Error("failed to create favorite", zap.Error(err))
		jsonutil.InternalError(w, "failed to favorite tool")
		return
	}

	jsonutil.OK(w, map[string]any{"favorite": created})
}

// remove handles DELETE /favorites. Removing an absent favorite is a 404,
// not a silent success.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in struct {
		ToolID string `json:"toolId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	toolID, err := primitive.ObjectIDFromHex(in.ToolID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	err = h.favoriteStore.DeleteByPair(r.Context(), toolID, u.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "favorite not found")
			return
		}
		h.logger.Error("failed to delete favorite", zap.Error(err))
		jsonutil.InternalError(w, "failed to remove favorite")
		return
	}

	jsonutil.OK(w, map[string]any{"message": "favorite removed"})
}

// status handles GET /favorites?toolId=.
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	toolID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("toolId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	ok, err := h.favoriteStore.Exists(r.Context(), toolID, u.Email)
	if err != nil {
		h.logger.Error("failed to check favorite", zap.Error(err))
		jsonutil.InternalError(w, "failed to check favorite")
		return
	}

	jsonutil.OK(w, map[string]any{"isFavorited": ok})
}

// mine handles GET /user/favorites.
func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	out, err := h.favoriteStore.ListByEmail(r.Context(), u.Email)
	if err != nil {
		h.logger.Error("failed to list favorites", zap.Error(err))
		jsonutil.InternalError(w, "failed to load favorites")
		return
	}
	if out == nil {
		out = []models.Favorite{}
	}
	jsonutil.OK(w, map[string]any{"favorites": out})
}
