package favorites

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the favorite endpoints on the root router.
// All of them require a signed-in user:
//   - POST   /favorites
//   - DELETE /favorites
//   - GET    /favorites?toolId=
//   - GET    /user/favorites
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	signed := r.With(sessionMgr.RequireSignedIn)
	signed.Post("/favorites", h.create)
	signed.Delete("/favorites", h.remove)
	signed.Get("/favorites", h.status)
	signed.Get("/user/favorites", h.mine)
}
