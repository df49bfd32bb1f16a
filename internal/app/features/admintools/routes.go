package admintools

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// Routes returns a router with the admin catalog endpoints.
//
// When mounted at /admin/tools:
//   - GET    /
//   - POST   /
//   - PUT    /{id}
//   - DELETE /{id}
//   - POST   /{id}/logo
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireRole("admin"))

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/logo", h.uploadLogo)

	return r
}
