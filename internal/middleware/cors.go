package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS sets CORS headers and answers OPTIONS preflights with 200.
// allowedOrigins is the list of allowed origins (e.g. https://www.reverie.app,
// http://localhost:3000).
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
