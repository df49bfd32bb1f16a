package reviews

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the review endpoints on the root router:
//   - GET    /reviews       (public)
//   - POST   /reviews       (signed in)
//   - PUT    /reviews       (signed in)
//   - DELETE /reviews       (signed in)
//   - GET    /user/reviews  (signed in)
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	r.Get("/reviews", h.list)

	signed := r.With(sessionMgr.RequireSignedIn)
	signed.Post("/reviews", h.create)
	signed.Put("/reviews", h.update)
	signed.Delete("/reviews", h.remove)
	signed.Get("/user/reviews", h.mine)
}
