package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photovault/internal/config"
	"photovault/internal/handler"
	"photovault/internal/middleware"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	Vault *handler.VaultHandler
	Media *handler.MediaHandler
	Audit *handler.AuditHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	healthCheck func(ctx context.Context) error,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(chiRoutePattern))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := healthCheck(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.Timeout(cfg.RequestTimeout))

			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/login", handlers.Auth.Login)
			auth.Post("/refresh", handlers.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", handlers.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", handlers.Auth.Me)
		})

		api.Route("/vault", func(vault chi.Router) {
			vault.Use(middleware.Timeout(cfg.RequestTimeout))
			vault.Use(authMiddleware.RequireAuth)

			vault.Post("/uploads", handlers.Vault.RequestUpload)
			vault.Post("/uploads/confirm", handlers.Vault.ConfirmUpload)

			vault.Get("/files", handlers.Vault.ListFiles)
			vault.Get("/gallery", handlers.Vault.Gallery)
			vault.Get("/trash", handlers.Vault.ListTrash)
			vault.Get("/audit", handlers.Audit.History)

			vault.Delete("/files/{id}", handlers.Vault.SoftDelete)
			vault.Post("/files/{id}/restore", handlers.Vault.Restore)
			vault.Delete("/trash/{id}", handlers.Vault.Purge)

			vault.Post("/files/bulk-delete", handlers.Vault.BulkSoftDelete)
			vault.Post("/trash/bulk-restore", handlers.Vault.BulkRestore)
			vault.Post("/trash/bulk-purge", handlers.Vault.BulkPurge)

			vault.Get("/files/{id}/download-url", handlers.Vault.DownloadURL)
			vault.Get("/files/{id}/grants", handlers.Vault.ListGrants)
			vault.Post("/files/{id}/grants", handlers.Vault.GrantRead)
			vault.Delete("/files/{id}/grants/{userID}", handlers.Vault.RevokeRead)
		})

		// Media routes stream object bytes; http.TimeoutHandler would
		// buffer whole responses, so they get the streaming variant.
		api.Route("/media", func(media chi.Router) {
			media.Use(middleware.StreamingTimeout(cfg.StreamTimeout, cfg.StreamIdleTimeout))
			media.Use(authMiddleware.RequireAuth)

			media.Get("/{id}/download", handlers.Media.Download)
			media.Get("/{id}/thumbnail", handlers.Media.Thumbnail)
			media.Post("/archive", handlers.Media.Archive)
		})
	})

	return r
}

// chiRoutePattern collapses path parameters to the route template for
// metric labels.
func chiRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
