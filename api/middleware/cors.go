package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",      // local dev
	"http://localhost:5173",      // local vite dev
	"https://teklifix.com",       // storefront
	"https://admin.teklifix.com", // admin panel
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Cart-Token", "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Cart-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
