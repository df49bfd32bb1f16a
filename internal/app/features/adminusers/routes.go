package adminusers

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the admin user management endpoints on the root
// router. Every route requires an authenticated admin:
//   - GET    /admin/users
//   - PUT    /admin/users
//   - DELETE /admin/users
//   - POST   /admin/create-user
//   - POST   /admin/update-password
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	admin := r.With(sessionMgr.RequireRole("admin"))
	admin.Get("/admin/users", h.list)
	admin.Put("/admin/users", h.updateRole)
	admin.Delete("/admin/users", h.remove)
	admin.Post("/admin/create-user", h.createUser)
	admin.Post("/admin/update-password", h.updatePassword)
}
