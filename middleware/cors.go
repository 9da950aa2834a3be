// middleware/cors.go
// Package middleware holds the HTTP middleware formrelay installs around
// its routes.
package middleware

import (
	"net/http"

	"github.com/dalemusser/formrelay/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig returns go-chi/cors configured from cfg, or an identity
// middleware when CORS is disabled, so it is safe to call unconditionally:
//
//	r.Use(middleware.CORSFromConfig(cfg))
func CORSFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORS.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORS.CORSAllowedHeaders,
		AllowCredentials: cfg.CORS.CORSAllowCredentials,
		MaxAge:           cfg.CORS.CORSMaxAge,
	})
}
