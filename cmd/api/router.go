package main

import (
	"net/http"

	"github.com/georgemunganga/account-service/internal/config"
	"github.com/georgemunganga/account-service/internal/modules/account"
	"github.com/georgemunganga/account-service/internal/modules/health"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newRouter(corsCfg config.CORSConfig, accounts *account.Handler, probe *health.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(corsOptions(corsCfg)))

	accounts.RegisterRoutes(router)
	probe.RegisterRoutes(router)

	return router
}

// corsOptions reflects the caller's origin when every origin is allowed, since
// browsers reject a literal "*" on credentialed requests.
func corsOptions(c config.CORSConfig) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if c.AllowsAnyOrigin() {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = c.AllowedOrigins
	}
	return opts
}
