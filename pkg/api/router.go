package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/rowguard/pkg/api/handlers"
	apiMiddleware "github.com/marmos91/rowguard/pkg/api/middleware"
	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/engine"
)

// NewRouter creates the chi router with all middleware and routes.
//
// Routes:
//   - GET /health, GET /health/ready - probes (unauthenticated)
//   - POST /api/v1/auth/login, POST /api/v1/auth/refresh - tokens
//   - GET /api/v1/auth/me - current identity
//   - /api/v1/projects/* - projects and their grants
//   - /api/v1/records/* - records, single and bulk
//   - /api/v1/messages/* - messages, single and bulk
//   - GET /api/v1/grants - grants visible to the caller
//   - /api/v1/principals/* - the caller's durable principals
//   - /api/v1/users/*, GET /api/v1/audit - users, capabilities, audit log
//
// Every /api/v1 route except login and refresh runs on a pooled connection
// bound to the token's identity.
func NewRouter(eng *engine.Engine, pool *engine.Pool, jwtService *auth.JWTService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(eng)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(pool, jwtService)
	projectHandler := handlers.NewProjectHandler()
	recordHandler := handlers.NewRecordHandler()
	messageHandler := handlers.NewMessageHandler()
	grantHandler := handlers.NewGrantHandler()
	principalHandler := handlers.NewPrincipalHandler()
	userHandler := handlers.NewUserHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService, pool))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.Get)
				r.Patch("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)

				r.Get("/{id}/grants", grantHandler.ListForProject)
				r.Put("/{id}/grants/{userID}", grantHandler.Put)
				r.Delete("/{id}/grants/{userID}", grantHandler.Delete)
			})

			r.Route("/records", func(r chi.Router) {
				r.Post("/", recordHandler.Create)
				r.Get("/", recordHandler.List)
				r.Patch("/", recordHandler.UpdateMany)
				r.Delete("/", recordHandler.DeleteMany)
				r.Get("/{id}", recordHandler.Get)
				r.Patch("/{id}", recordHandler.Update)
				r.Delete("/{id}", recordHandler.Delete)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", messageHandler.Send)
				r.Get("/", messageHandler.List)
				r.Delete("/", messageHandler.DeleteMany)
				r.Get("/{id}", messageHandler.Get)
				r.Patch("/{id}", messageHandler.Update)
				r.Delete("/{id}", messageHandler.Delete)
			})

			r.Get("/grants", grantHandler.List)

			r.Route("/principals", func(r chi.Router) {
				r.Post("/", principalHandler.Create)
				r.Get("/", principalHandler.List)
				r.Patch("/{name}", principalHandler.SetEnabled)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Patch("/{id}", userHandler.SetEnabled)
				r.Put("/{id}/capabilities/{name}", userHandler.GrantCapability)
				r.Delete("/{id}/capabilities/{name}", userHandler.RevokeCapability)
			})

			r.Get("/audit", userHandler.Audit)
		})
	})

	return r
}
