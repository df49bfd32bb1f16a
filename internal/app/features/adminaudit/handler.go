// Package adminaudit serves the admin audit trail listing.
package adminaudit

import (
	"net/http"
	"strconv"

	"github.com/klicktools/klicktools/internal/app/store/audit"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const pageSize = 50

// Handler handles audit trail requests.
type Handler struct {
	auditStore *audit.Store
	logger     *zap.Logger
}

// NewHandler creates a new adminaudit Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: audit.New(db),
		logger:     logger,
	}
}

// filterFromQuery builds a QueryFilter from the request's query string.
// Malformed identifiers fail with an error so the handler can 400 instead
// of silently matching nothing.
func filterFromQuery(r *http.Request) (audit.QueryFilter, error) {
	q := r.URL.Query()

	f := audit.QueryFilter{
		Category:   q.Get("category"),
		EventType:  q.Get("type"),
		FailedOnly: q.Get("failed") == "true",
	}

	if v := q.Get("userId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, err
		}
		f.UserID = &id
	}
	if v := q.Get("actorId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, err
		}
		f.ActorID = &id
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if limit <= 0 {
		limit = pageSize
	}
	if page <= 0 {
		page = 1
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit

	return f, nil
}

// list handles GET /admin/audit.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id filter")
		return
	}

	events, err := h.auditStore.Query(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to list audit events", zap.Error(err))
		jsonutil.InternalError(w, "failed to load audit events")
		return
	}
	total, err := h.auditStore.CountByFilter(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to count audit events", zap.Error(err))
		jsonutil.InternalError(w, "failed to load audit events")
		return
	}

	if events == nil {
		events = []audit.Event{}
	}
	jsonutil.OK(w, map[string]any{
		"events": events,
		"total":  total,
	})
}
