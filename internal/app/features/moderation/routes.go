package moderation

import (
	"github.com/go-chi/chi/v5"
	"github.com/klicktools/klicktools/internal/app/system/auth"
)

// MountRoutes registers the admin moderation endpoints on the root router:
//   - GET    /admin/reviews
//   - DELETE /admin/reviews/{id}
//   - GET    /admin/favorites
//   - DELETE /admin/favorites/{id}
func MountRoutes(r chi.Router, h *Handler, sessionMgr *auth.SessionManager) {
	admin := r.With(sessionMgr.RequireRole("admin"))
	admin.Get("/admin/reviews", h.listReviews)
	admin.Delete("/admin/reviews/{id}", h.removeReview)
	admin.Get("/admin/favorites", h.listFavorites)
	admin.Delete("/admin/favorites/{id}", h.removeFavorite)
}
