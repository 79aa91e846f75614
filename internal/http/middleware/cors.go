package middleware

import (
	"net/http"

	"gptwrapped/internal/config"

	"github.com/go-chi/cors"
)

// CORS builds the cross-origin policy for the browser client. PATCH is in
// the allowed set for the card image route.
func CORS(cfg config.Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           300,
	})
}
