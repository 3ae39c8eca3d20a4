package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS configures cross-origin access for the JSON API. Upload bytes
// never pass through these routes (clients PUT straight to the object
// store with a presigned credential), so PUT stays out of the allow
// list; the exposed headers cover proxy downloads and rate limiting.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length", "Cache-Control", "Retry-After", "X-Request-ID"},
		MaxAge:         600,
	})

	return handler.Handler
}
