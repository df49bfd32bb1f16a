// Package tools provides the public catalog endpoints.
//
// Endpoints:
//   - GET  /tools            - Filtered, sorted tool listing
//   - POST /tools            - Add a tool to the catalog (admin only)
//   - GET  /tools/{id}       - Tool detail (bumps the view counter)
//   - POST /tools/{id}/click - Record an outbound click
//   - GET  /categories       - Category counts with an "All Tools" total
package tools

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/normalize"
	"github.com/klicktools/klicktools/internal/app/system/sanitize"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var timeNow = time.Now

// Handler handles public catalog requests.
type Handler struct {
	toolStore   *toolstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new tools Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		toolStore:   toolstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// parseID validates a tool identifier at the boundary so malformed values
// fail with 400 before any query runs.
func parseID(raw string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(raw)
}

// listFilterFromQuery builds a ListFilter from the request's query string.
func listFilterFromQuery(r *http.Request) (toolstore.ListFilter, error) {
	q := r.URL.Query()

	f := toolstore.ListFilter{
		Query:    normalize.QueryParam(q.Get("q")),
		Category: normalize.QueryParam(q.Get("category")),
		Sort:     normalize.QueryParam(q.Get("sort")),
	}

	if p := normalize.QueryParam(q.Get("pricing")); p != "" {
		pricing := normalize.Pricing(p)
		if !models.IsValidPricing(pricing) {
			return f, errors.New("invalid pricing")
		}
		f.Pricing = pricing
	}
	if s := normalize.QueryParam(q.Get("status")); s != "" {
		status := normalize.Status(s)
		if !models.IsValidToolStatus(status) {
			return f, errors.New("invalid status")
		}
		f.Status = status
	}
	if v := q.Get("rating"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid rating")
		}
		f.MinRating = &min
	}
	if v := q.Get("apiAvailable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("invalid apiAvailable")
		}
		f.APIAvailable = &b
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("invalid featured")
		}
		f.Featured = &b
	}

	return f, nil
}

// list handles GET /tools.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := listFilterFromQuery(r)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	if limit <= 0 {
		limit = 50
	}

	tools, err := h.toolStore.List(r.Context(), f, storeutil.Paginate(limit, page))
	if err != nil {
		h.logger.Error("failed to list tools", zap.Error(err))
		jsonutil.InternalError(w, "failed to load tools")
		return
	}
	total, err := h.toolStore.CountByFilter(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to count tools", zap.Error(err))
		jsonutil.InternalError(w, "failed to load tools")
		return
	}

	if tools == nil {
		tools = []models.Tool{}
	}
	jsonutil.OK(w, map[string]any{
		"tools": tools,
		"total": total,
	})
}

// toolInputFromRequest decodes and sanitizes the tool payload shared by the
// public and admin create paths.
type toolPayload struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	Website      string   `json:"website"`
	Docs         string   `json:"documentation"`
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Tags         []string `json:"tags"`
	Logo         string   `json:"logo"`
	Color        string   `json:"color"`
	Featured     bool     `json:"featured"`
	Pricing      string   `json:"pricing"`
	Pros         []string `json:"pros"`
	Cons         []string `json:"cons"`
	Features     []string `json:"features"`
	APIAvailable bool     `json:"apiAvailable"`
	APIURL       string   `json:"apiUrl"`
}

func (p toolPayload) toInput() models.ToolInput {
	return models.ToolInput{
		Name:         sanitize.Text(p.Name),
		Description:  sanitize.Text(p.Description),
		URL:          sanitize.Text(p.URL),
		Website:      sanitize.Text(p.Website),
		Docs:         sanitize.Text(p.Docs),
		Category:     sanitize.Text(p.Category),
		Subcategory:  sanitize.Text(p.Subcategory),
		Tags:         sanitize.List(p.Tags),
		Logo:         sanitize.Text(p.Logo),
		Color:        sanitize.Text(p.Color),
		Featured:     p.Featured,
		Pricing:      normalize.Pricing(p.Pricing),
		Pros:         sanitize.List(p.Pros),
		Cons:         sanitize.List(p.Cons),
		Features:     sanitize.List(p.Features),
		APIAvailable: p.APIAvailable,
		APIURL:       sanitize.Text(p.APIURL),
	}
}

// create handles POST /tools. Requires the admin role; the route gate is in
// MountRoutes.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in toolPayload
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	input := in.toInput()
	if input.Name == "" || input.Description == "" || input.Category == "" {
		jsonutil.BadRequest(w, "name, description, and category are required")
		return
	}
	if input.Pricing != "" && !models.IsValidPricing(input.Pricing) {
		jsonutil.BadRequest(w, "invalid pricing")
		return
	}

	tool := models.NewTool(input, timeNow())
	if u, ok := auth.CurrentUser(r); ok {
		if oid := u.UserID(); !oid.IsZero() {
			tool.CreatedBy = &oid
		}
	}

	created, err := h.toolStore.Create(r.Context(), tool)
	if err != nil {
		if errors.Is(err, toolstore.ErrDuplicateName) {
			jsonutil.Conflict(w, "a tool with this name already exists")
			return
		}
		h.logger.Error("failed to create tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to create tool")
		return
	}

	if u, ok := auth.CurrentUser(r); ok {
		h.auditLogger.ToolCreated(r.Context(), r, u.UserID(), created.ID, created.Name)
	}
	jsonutil.Created(w, map[string]any{"tool": created})
}

// detail handles GET /tools/{id}. Each hit bumps the view counter.
func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	tool, err := h.toolStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "tool not found")
			return
		}
		h.logger.Error("failed to load tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to load tool")
		return
	}

	if err := h.toolStore.IncViews(r.Context(), id); err != nil {
		h.logger.Warn("failed to bump view counter",
			zap.String("tool_id", id.Hex()),
			zap.Error(err))
	}

	jsonutil.OK(w, map[string]any{"tool": tool})
}

// click handles POST /tools/{id}/click.
func (h *Handler) click(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	if _, err := h.toolStore.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "tool not found")
			return
		}
		h.logger.Error("failed to load tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to record click")
		return
	}

	if err := h.toolStore.IncClicks(r.Context(), id); err != nil {
		h.logger.Error("failed to bump click counter", zap.Error(err))
		jsonutil.InternalError(w, "failed to record click")
		return
	}

	jsonutil.OK(w, map[string]any{"message": "click recorded"})
}

// categories handles GET /categories. The breakdown is prefixed with a
// synthetic "All Tools" entry carrying the catalog total.
func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.toolStore.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to load categories", zap.Error(err))
		jsonutil.InternalError(w, "failed to load categories")
		return
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}

	out := make([]toolstore.CategoryCount, 0, len(counts)+1)
	out = append(out, toolstore.CategoryCount{Category: "All Tools", Count: total})
	out = append(out, counts...)

	jsonutil.OK(w, map[string]any{"categories": out})
}
