package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS allows the diary frontend origins to call the API. Browsers reject
// credentialed responses for a wildcard origin, so "*" turns credentials off.
func CORS(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	if slices.Contains(allowedOrigins, "*") {
		allowCredentials = false
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: allowCredentials,
		MaxAge:           600,
	})
}
