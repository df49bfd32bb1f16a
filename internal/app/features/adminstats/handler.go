// Package adminstats serves the admin dashboard statistics endpoint.
package adminstats

import (
	"context"
	"net/http"

	statsstore "github.com/klicktools/klicktools/internal/app/store/stats"
	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/timeouts"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	topCategoryLimit = 10
	recentToolLimit  = 10
	growthMonths     = 6
)

// Handler handles admin statistics requests.
type Handler struct {
	statsStore *statsstore.Store
	toolStore  *toolstore.Store
	logger     *zap.Logger
}

// NewHandler creates a new adminstats Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		statsStore: statsstore.New(db),
		toolStore:  toolstore.New(db),
		logger:     logger,
	}
}

// stats handles GET /admin/stats.
//
// The response aggregates catalog and account totals, rating averages,
// category/pricing/status breakdowns, six-month growth series, and the
// most recently added tools.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	totals, err := h.statsStore.Totals(ctx)
	if err != nil {
		h.logger.Error("failed to compute totals", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	avgRating, err := h.statsStore.AverageRating(ctx)
	if err != nil {
		h.logger.Error("failed to compute average rating", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	topCategories, err := h.statsStore.TopCategories(ctx, topCategoryLimit)
	if err != nil {
		h.logger.Error("failed to compute top categories", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	pricing, err := h.statsStore.PricingBreakdown(ctx)
	if err != nil {
		h.logger.Error("failed to compute pricing breakdown", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	status, err := h.statsStore.StatusBreakdown(ctx)
	if err != nil {
		h.logger.Error("failed to compute status breakdown", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	toolGrowth, err := h.statsStore.ToolGrowth(ctx, growthMonths)
	if err != nil {
		h.logger.Error("failed to compute tool growth", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	userGrowth, err := h.statsStore.UserGrowth(ctx, growthMonths)
	if err != nil {
		h.logger.Error("failed to compute user growth", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}

	recent, err := h.toolStore.List(ctx, toolstore.ListFilter{Sort: toolstore.SortNewest},
		storeutil.Paginate(recentToolLimit, 1))
	if err != nil {
		h.logger.Error("failed to load recent tools", zap.Error(err))
		jsonutil.InternalError(w, "failed to load statistics")
		return
	}
	if recent == nil {
		recent = []models.Tool{}
	}

	jsonutil.OK(w, map[string]any{
		"totals":        totals,
		"averageRating": avgRating,
		"topCategories": topCategories,
		"pricing":       pricing,
		"status":        status,
		"toolGrowth":    toolGrowth,
		"userGrowth":    userGrowth,
		"recentTools":   recent,
	})
}
