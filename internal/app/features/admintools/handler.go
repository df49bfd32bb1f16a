// Package admintools provides the admin catalog management endpoints.
//
// Endpoints (all admin only):
//   - GET    /admin/tools           - Full catalog listing, any status
//   - POST   /admin/tools           - Add a tool
//   - PUT    /admin/tools/{id}      - Edit a tool
//   - DELETE /admin/tools/{id}      - Remove a tool and its reviews/favorites
//   - POST   /admin/tools/{id}/logo - Upload a logo image
package admintools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	favoritestore "github.com/klicktools/klicktools/internal/app/store/favorites"
	reviewstore "github.com/klicktools/klicktools/internal/app/store/reviews"
	"github.com/klicktools/klicktools/internal/app/store/storeutil"
	toolstore "github.com/klicktools/klicktools/internal/app/store/tools"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"github.com/klicktools/klicktools/internal/app/system/normalize"
	"github.com/klicktools/klicktools/internal/app/system/sanitize"
	"github.com/klicktools/klicktools/internal/app/system/txn"
	"github.com/klicktools/klicktools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxLogoSize caps logo uploads at 5 MB.
const maxLogoSize = 5 << 20

// Handler handles admin catalog requests.
type Handler struct {
	toolStore     *toolstore.Store
	reviewStore   *reviewstore.Store
	favoriteStore *favoritestore.Store
	db            *mongo.Database
	fileStorage   storage.Store
	auditLogger   *auditlog.Logger
	logger        *zap.Logger
}

// NewHandler creates a new admintools Handler.
func NewHandler(
	db *mongo.Database,
	fileStorage storage.Store,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		toolStore:     toolstore.New(db),
		reviewStore:   reviewstore.New(db),
		favoriteStore: favoritestore.New(db),
		db:            db,
		fileStorage:   fileStorage,
		auditLogger:   auditLogger,
		logger:        logger,
	}
}

type toolPayload struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	URL          *string   `json:"url"`
	Website      *string   `json:"website"`
	Docs         *string   `json:"documentation"`
	Category     *string   `json:"category"`
	Subcategory  *string   `json:"subcategory"`
	Tags         *[]string `json:"tags"`
	Logo         *string   `json:"logo"`
	Color        *string   `json:"color"`
	Featured     *bool     `json:"featured"`
	Pricing      *string   `json:"pricing"`
	Status       *string   `json:"status"`
	Pros         *[]string `json:"pros"`
	Cons         *[]string `json:"cons"`
	Features     *[]string `json:"features"`
	APIAvailable *bool     `json:"apiAvailable"`
	APIURL       *string   `json:"apiUrl"`
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func listOr(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

// list handles GET /admin/tools.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := toolstore.ListFilter{
		Query: normalize.QueryParam(q.Get("q")),
		Sort:  toolstore.SortNewest,
	}
	if s := normalize.QueryParam(q.Get("status")); s != "" {
		f.Status = normalize.Status(s)
	}

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

// create handles POST /admin/tools.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	var in toolPayload
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	input := models.ToolInput{
		Name:         sanitize.Text(strOr(in.Name)),
		Description:  sanitize.Text(strOr(in.Description)),
		URL:          sanitize.Text(strOr(in.URL)),
		Website:      sanitize.Text(strOr(in.Website)),
		Docs:         sanitize.Text(strOr(in.Docs)),
		Category:     sanitize.Text(strOr(in.Category)),
		Subcategory:  sanitize.Text(strOr(in.Subcategory)),
		Tags:         sanitize.List(listOr(in.Tags)),
		Logo:         sanitize.Text(strOr(in.Logo)),
		Color:        sanitize.Text(strOr(in.Color)),
		Pricing:      normalize.Pricing(strOr(in.Pricing)),
		Pros:         sanitize.List(listOr(in.Pros)),
		Cons:         sanitize.List(listOr(in.Cons)),
		Features:     sanitize.List(listOr(in.Features)),
		APIURL:       sanitize.Text(strOr(in.APIURL)),
	}
	if in.Featured != nil {
		input.Featured = *in.Featured
	}
	if in.APIAvailable != nil {
		input.APIAvailable = *in.APIAvailable
	}

	if input.Name == "" || input.Description == "" || input.Category == "" {
		jsonutil.BadRequest(w, "name, description, and category are required")
		return
	}
	if input.Pricing != "" && !models.IsValidPricing(input.Pricing) {
		jsonutil.BadRequest(w, "invalid pricing")
		return
	}

	tool := models.NewTool(input, time.Now())
	if in.Status != nil {
		tool.Status = normalize.Status(*in.Status)
		if !models.IsValidToolStatus(tool.Status) {
			jsonutil.BadRequest(w, "invalid status")
			return
		}
	}
	if oid := u.UserID(); !oid.IsZero() {
		tool.CreatedBy = &oid
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

	h.auditLogger.ToolCreated(r.Context(), r, u.UserID(), created.ID, created.Name)
	jsonutil.Created(w, map[string]any{"tool": created})
}

// update handles PUT /admin/tools/{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid tool id")
		return
	}

	var in toolPayload
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	upd := toolstore.UpdateInput{
		Featured:     in.Featured,
		APIAvailable: in.APIAvailable,
	}
	setStr := func(dst **string, src *string) {
		if src != nil {
			v := sanitize.Text(*src)
			*dst = &v
		}
	}
	setStr(&upd.Name, in.Name)
	setStr(&upd.Description, in.Description)
	setStr(&upd.URL, in.URL)
	setStr(&upd.Website, in.Website)
	setStr(&upd.Docs, in.Docs)
	setStr(&upd.Category, in.Category)
	setStr(&upd.Subcategory, in.Subcategory)
	setStr(&upd.Logo, in.Logo)
	setStr(&upd.Color, in.Color)
	setStr(&upd.APIURL, in.APIURL)
	if in.Pricing != nil {
		upd.Pricing = in.Pricing
	}
	if in.Status != nil {
		upd.Status = in.Status
	}
	setList := func(dst **[]string, src *[]string) {
		if src != nil {
			v := sanitize.List(*src)
			*dst = &v
		}
	}
	setList(&upd.Tags, in.Tags)
	setList(&upd.Pros, in.Pros)
	setList(&upd.Cons, in.Cons)
	setList(&upd.Features, in.Features)

	if err := h.toolStore.Update(r.Context(), id, upd); err != nil {
		switch {
		case errors.Is(err, toolstore.ErrDuplicateName):
			jsonutil.Conflict(w, "a tool with this name already exists")
		case errors.Is(err, mongo.ErrNoDocuments):
			jsonutil.NotFound(w, "tool not found")
		default:
			h.logger.Error("failed to update tool", zap.Error(err))
			jsonutil.InternalError(w, "failed to update tool")
		}
		return
	}

	tool, err := h.toolStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reload tool", zap.Error(err))
		jsonutil.InternalError(w, "failed to update tool")
		return
	}

	h.auditLogger.ToolUpdated(r.Context(), r, u.UserID(), tool.ID, tool.Name)
	jsonutil.OK(w, map[string]any{"tool": tool})
}

// remove handles DELETE /admin/tools/{id}. The tool and its dependent
// reviews and favorites go in one transaction where supported.
func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
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
		jsonutil.InternalError(w, "failed to delete tool")
		return
	}

	err = txn.Run(r.Context(), h.db, h.logger, func(ctx context.Context) error {
		if _, err := h.toolStore.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete tool: %w", err)
		}
		if _, err := h.reviewStore.DeleteByTool(ctx, id); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if _, err := h.favoriteStore.DeleteByTool(ctx, id); err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("failed to delete tool",
			zap.String("tool_id", id.Hex()),
			zap.Error(err))
		jsonutil.InternalError(w, "failed to delete tool")
		return
	}

	h.auditLogger.ToolDeleted(r.Context(), r, u.UserID(), tool.ID, tool.Name)
	jsonutil.OK(w, map[string]any{"message": "tool deleted"})
}

// uploadLogo handles POST /admin/tools/{id}/logo (multipart form, field "logo").
func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
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
		jsonutil.InternalError(w, "failed to upload logo")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize)
	file, header, err := r.FormFile("logo")
	if err != nil {
		jsonutil.BadRequest(w, "logo file is required")
		return
	}
	defer file.Close()

	// Unique path: logos/YYYY/MM/uuid-ext
	now := time.Now().UTC()
	ext := filepath.Ext(header.Filename)
	path := fmt.Sprintf("logos/%04d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String()[:8], ext)

	opts := &storage.PutOptions{
		ContentType: header.Header.Get("Content-Type"),
	}
	if err := h.fileStorage.Put(r.Context(), path, file, opts); err != nil {
		h.logger.Error("failed to store logo", zap.Error(err))
		jsonutil.InternalError(w, "failed to upload logo")
		return
	}

	logoURL := h.fileStorage.URL(path)
	if err := h.toolStore.Update(r.Context(), id, toolstore.UpdateInput{Logo: &logoURL}); err != nil {
		h.logger.Error("failed to save logo url", zap.Error(err))
		jsonutil.InternalError(w, "failed to upload logo")
		return
	}

	h.auditLogger.ToolUpdated(r.Context(), r, u.UserID(), id, "logo")
	jsonutil.OK(w, map[string]any{"logo": logoURL})
}
