// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	adminauditfeature "github.com/klicktools/klicktools/internal/app/features/adminaudit"
	adminstatsfeature "github.com/klicktools/klicktools/internal/app/features/adminstats"
	admintoolsfeature "github.com/klicktools/klicktools/internal/app/features/admintools"
	adminusersfeature "github.com/klicktools/klicktools/internal/app/features/adminusers"
	authapifeature "github.com/klicktools/klicktools/internal/app/features/authapi"
	favoritesfeature "github.com/klicktools/klicktools/internal/app/features/favorites"
	healthfeature "github.com/klicktools/klicktools/internal/app/features/health"
	moderationfeature "github.com/klicktools/klicktools/internal/app/features/moderation"
	reviewsfeature "github.com/klicktools/klicktools/internal/app/features/reviews"
	toolsfeature "github.com/klicktools/klicktools/internal/app/features/tools"
	"github.com/klicktools/klicktools/internal/app/store/audit"
	userstore "github.com/klicktools/klicktools/internal/app/store/users"
	"github.com/klicktools/klicktools/internal/app/system/auditlog"
	"github.com/klicktools/klicktools/internal/app/system/auth"
	"github.com/klicktools/klicktools/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every endpoint is JSON; there are no
// server-rendered pages, so no template engine or CSRF layer is wired in.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes and deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Bearer tokens share the same identity pipeline as sessions.
	tokens, err := auth.NewTokenManager(appCfg.JWTKey, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetTokenManager(tokens)

	// Create audit store and logger for security event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded files (local storage only).
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Authentication.
	authHandler := authapifeature.NewHandler(deps.MongoDatabase, sessionMgr, tokens, auditLogger, logger)
	r.Mount("/auth", authapifeature.Routes(authHandler))

	// Public catalog.
	toolsHandler := toolsfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	toolsfeature.MountRoutes(r, toolsHandler, sessionMgr)

	// Reviews and favorites (member surface).
	reviewsHandler := reviewsfeature.NewHandler(deps.MongoDatabase, logger)
	reviewsfeature.MountRoutes(r, reviewsHandler, sessionMgr)

	favoritesHandler := favoritesfeature.NewHandler(deps.MongoDatabase, logger)
	favoritesfeature.MountRoutes(r, favoritesHandler, sessionMgr)

	// Admin catalog management.
	admintoolsHandler := admintoolsfeature.NewHandler(deps.MongoDatabase, deps.FileStorage, auditLogger, logger)
	r.Mount("/admin/tools", admintoolsfeature.Routes(admintoolsHandler, sessionMgr))

	// Admin user management.
	adminusersHandler := adminusersfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	adminusersfeature.MountRoutes(r, adminusersHandler, sessionMgr)

	// Admin statistics.
	adminstatsHandler := adminstatsfeature.NewHandler(deps.MongoDatabase, logger)
	adminstatsfeature.MountRoutes(r, adminstatsHandler, sessionMgr)

	// Admin audit trail.
	adminauditHandler := adminauditfeature.NewHandler(deps.MongoDatabase, logger)
	adminauditfeature.MountRoutes(r, adminauditHandler, sessionMgr)

	// Admin moderation.
	moderationHandler := moderationfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	moderationfeature.MountRoutes(r, moderationHandler, sessionMgr)

	// JSON 404 for unmatched routes.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, "not found")
	})

	return r, nil
}
