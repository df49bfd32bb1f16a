package tools

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the public catalog endpoints on the root router:
//   - GET  /tools
//   - POST /tools            (admin only)
//   - GET  /tools/{id}
//   - POST /tools/{id}/click
//   - GET  /categories
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	r.Get("/tools", h.list)
	r.With(sessionMgr.RequireRole("admin")).Post("/tools", h.create)
	r.Get("/tools/{id}", h.detail)
	r.Post("/tools/{id}/click", h.click)
	r.Get("/categories", h.categories)
}
