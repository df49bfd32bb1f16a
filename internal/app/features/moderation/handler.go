// Package moderation provides the admin review and favorite moderation
// endpoints. Removing a review here recomputes the tool's denormalized
// rating the same way member-facing review writes do.
package moderation

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	favoritestore "github.com/klicktools/klicktools/internal/app/store/favorites"
	reviewstore "github.com/klicktools/klicktools/internal/app/store/reviews"
	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/ratings"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const pageSize = 20

// Handler handles moderation requests.
type Handler struct {
	reviewStore   *reviewstore.Store
	favoriteStore *favoritestore.Store
	ratings       *ratings.Service
	auditLogger   *auditlog.Logger
	logger        *zap.Logger
}

// NewHandler creates a new moderation Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		reviewStore:   reviewstore.New(db),
		favoriteStore: favoritestore.New(db),
		ratings:       ratings.NewService(db, logger),
		auditLogger:   auditLogger,
		logger:        logger,
	}
}

func pageOpts(r *http.Request) (limit, page int64) {
	q := r.URL.Query()
	limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ = strconv.ParseInt(q.Get("page"), 10, 64)
	if limit <= 0 {
		limit = pageSize
	}
	return limit, page
}

// listReviews handles GET /admin/reviews.
func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	limit, page := pageOpts(r)

	reviews, err := h.reviewStore.ListAll(r.Context(), storeutil.Paginate(limit, page))
	if err != nil {
		h.logger.Error("failed to list reviews", zap.Error(err))
		jsonutil.InternalError(w, "failed to load reviews")
		return
	}
	total, err := h.reviewStore.Count(r.Context(), bson.M{})
	if err != nil {
		h.logger.Error("failed to count reviews", zap.Error(err))
		jsonutil.InternalError(w, "failed to load reviews")
		return
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	jsonutil.OK(w, map[string]any{
		"reviews": reviews,
		"total":   total,
	})
}

// removeReview handles DELETE /admin/reviews/{id}.
func (h *Handler) removeReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid review id")
		return
	}

	rv, err := h.reviewStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "review not found")
			return
		}
		h.logger.Error("failed to load review", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete review")
		return
	}

	err = h.ratings.RecomputeWith(r.Context(), rv.ToolID, func(ctx context.Context) error {
		return h.reviewStore.DeleteByID(ctx, id)
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

	h.auditLogger.ReviewDeleted(r.Context(), r, actor.UserID(), id, rv.ToolName)
	jsonutil.OK(w, map[string]any{"message": "review deleted"})
}

// listFavorites handles GET /admin/favorites.
func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	limit, page := pageOpts(r)

	favorites, err := h.favoriteStore.ListAll(r.Context(), storeutil.Paginate(limit, page))
	if err != nil {
		h.logger.Error("failed to list favorites", zap.Error(err))
		jsonutil.InternalError(w, "failed to load favorites")
		return
	}
	total, err := h.favoriteStore.Count(r.Context(), bson.M{})
	if err != nil {
		h.logger.Error("failed to count favorites", zap.Error(err))
		jsonutil.InternalError(w, "failed to load favorites")
		return
	}

	if favorites == nil {
		favorites = []models.Favorite{}
	}
	jsonutil.OK(w, map[string]any{
		"favorites": favorites,
		"total":     total,
	})
}

// removeFavorite handles DELETE /admin/favorites/{id}.
func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid favorite id")
		return
	}

	fav, err := h.favoriteStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "favorite not found")
			return
		}
		h.logger.Error("failed to load favorite", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete favorite")
		return
	}

	if err := h.favoriteStore.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "favorite not found")
			return
		}
		h.logger.Error("failed to delete favorite", zap.Error(err))
		jsonutil.InternalError(w, "failed to delete favorite")
		return
	}

	h.auditLogger.FavoriteRemoved(r.Context(), r, actor.UserID(), id, fav.ToolName)
	jsonutil.OK(w, map[string]any{"message": "favorite removed"})
}
