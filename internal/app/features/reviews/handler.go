// Package reviews provides the per-user review endpoints.
//
// Endpoints:
//   - POST   /reviews       - Create a review (one per user per tool)
//   - PUT    /reviews       - Update the caller's review of a tool
//   - DELETE /reviews       - Delete the caller's review of a tool
//   - GET    /reviews       - List reviews by tool and/or user email
//   - GET    /user/reviews  - List the caller's reviews
//
// Every mutation commits together with a recompute of the tool's
// denormalized rating and review count; a failed recompute fails the
// request.
package reviews

import (
	"context"
	"errors"
	"net/http"

	reviewstore "github.com/klicktools/klicktools/internal/app/store/reviews"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/ratings"
	"github.com/klicktools/klicktools/internal/app/system/sanitize"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles review API requests.
type Handler struct {
	reviewStore *reviewstore.Store
	toolStore   *toolstore.Store
	ratings     *ratings.Service
	logger      *zap.Logger
}

// NewHandler creates a new reviews Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		reviewStore: reviewstore.New(db),
		toolStore:   toolstore.New(db),
		ratings:     ratings.NewService(db, logger),
		logger:      logger,
	}
}

type reviewPayload struct {
	ToolID  string `json:"toolId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// create handles POST /reviews.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in reviewPayload
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	toolID, err := primitive.ObjectIDFromHex(in.ToolID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}
	if !models.IsValidReviewRating(in.Rating) {
		jsonutil.BadRequest(w, "rating must be between 1 and 5")
		return
	}

	tool, err := h.toolStore.GetByID(r.Context(), toolID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "tool not found")
			return
		}
		h.logger.Error("failed to load tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to create review")
		return
	}

	var created models.Review
	err = h.ratings.RecomputeWith(r.Context(), toolID, func(ctx context.Context) error {
		created, err = h.reviewStore.Create(ctx, models.Review{
			ToolID:    toolID,
			UserID:    u.UserID(),
			UserEmail: u.Email,
			UserName:  u.Name,
			ToolName:  tool.Name,
			Rating:    in.Rating,
			Comment:   sanitize.Text(in.Comment),
		})
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, reviewstore.ErrDuplicateReview):
			jsonutil.Conflict(w, "you have already reviewed this tool; use update instead")
		case errors.Is(err, mongo.ErrNoDocuments):
			jsonutil.NotFound(w, "tool not found")
		default:
			h.logger.Error("failed to create review", zap.Error(err))
			jsonutil.InternalError(w, "failed to create review")
		}
		return
	}

	jsonutil.Created(w, map[string]any{"review": created})
}

// update handles PUT /reviews. The target is the caller's review of the tool.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in reviewPayload
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	toolID, err := primitive.ObjectIDFromHex(in.ToolID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}
	if !models.IsValidReviewRating(in.Rating) {
		jsonutil.BadRequest(w, "rating must be between 1 and 5")
		return
	}

	err = h.ratings.RecomputeWith(r.Context(), toolID, func(ctx context.Context) error {
		return h.reviewStore.UpdateByPair(ctx, toolID, u.Email, in.Rating, sanitize.Text(in.Comment))
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "review not found")
			return
		}
		h.logger.Error("failed to update review", zap.Error(err))
		jsonutil.InternalError(w, "failed to update review")
		return
	}

	jsonutil.OK(w, map[string]any{"message": "review updated"})
}

// remove handles DELETE /reviews. The target is the caller's review of the tool.
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

	err = h.ratings.RecomputeWith(r.Context(), toolID, func(ctx context.Context) error {
		return h.reviewStore.DeleteByPair(ctx, toolID, u.Email)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "review not found")
			return
		}
		h.logger.Error("failed to delete review", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete review")
		return
	}

	jsonutil.OK(w, map[string]any{"message": "review deleted"})
}

// list handles GET /reviews?toolId=&userEmail=.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	toolParam := q.Get("toolId")
	emailParam := q.Get("userEmail")

	var (
		out []models.Review
		err error
	)
	switch {
	case toolParam != "":
		var toolID primitive.ObjectID
		toolID, err = primitive.ObjectIDFromHex(toolParam)
		if err != nil {
			jsonutil.BadRequest(w, "invalid tool id")
			return
		}
		out, err = h.reviewStore.ListByTool(r.Context(), toolID)
	case emailParam != "":
		out, err = h.reviewStore.ListByEmail(r.Context(), emailParam)
	default:
		jsonutil.BadRequest(w, "toolId or userEmail is required")
		return
	}
	if err != nil {
		h.logger.Error("failed to list reviews", zap.Error(err))
		jsonutil.InternalError(w, "failed to load reviews")
		return
	}

	if out == nil {
		out = []models.Review{}
	}
	jsonutil.OK(w, map[string]any{"reviews": out})
}

// mine handles GET /user/reviews.
func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	out, err := h.reviewStore.ListByEmail(r.Context(), u.Email)
	if err != nil {
		h.logger.Error("failed to list reviews", zap.Error(err))
		jsonutil.InternalError(w, "failed to load reviews")
		return
	}
	if out == nil {
		out = []models.Review{}
	}
	jsonutil.OK(w, map[string]any{"reviews": out})
}

