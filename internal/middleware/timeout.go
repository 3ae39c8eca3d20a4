package middleware

import (
	"net/http"
	"time"
)

// Timeout caps the JSON API routes. http.TimeoutHandler buffers the
// whole response before writing it, which the short metadata responses
// can afford; media streaming routes use StreamingTimeout instead.
func Timeout(maxDuration time.Duration) func(http.Handler) http.Handler {
	if maxDuration <= 0 {
		maxDuration = 30 * time.Second
	}

	body := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"the request took too long to complete"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, maxDuration, body)
	}
}
