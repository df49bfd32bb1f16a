package adminaudit

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the audit trail endpoint on the root router.
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	r.With(sessionMgr.RequireRole("admin")).Get("/admin/audit", h.list)
}
