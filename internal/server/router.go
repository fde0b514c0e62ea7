package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/minidebet/backend/docs"
	mW "github.com/minidebet/backend/internal/middleware"
)

const requestTimeout = 60 * time.Second

// Router builds the HTTP routes. Everything below /api/v1 except register
// and login requires a bearer token.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mW.RequestLogger(a.log.Named("http")))
	r.Use(chimw.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(a.metrics.Middleware)
	r.Use(chimw.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", a.health)
	r.Handle("/metrics", a.metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", a.auth.Register)
		r.Post("/auth/login", a.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(mW.Auth(a.tokens, a.log))

			r.Post("/auth/logout", a.auth.Logout)
			r.Get("/auth/me", a.auth.Me)
			r.Put("/auth/password", a.auth.ChangePassword)

			r.Get("/settings", a.settings.Get)
			r.Put("/settings", a.settings.Update)

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", a.clients.Create)
				r.Get("/", a.clients.List)
				r.Get("/{id}", a.clients.Get)
				r.Put("/{id}", a.clients.Update)
				r.Delete("/{id}", a.clients.Delete)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", a.invoices.Create)
				r.Get("/", a.invoices.List)
				r.Get("/{id}", a.invoices.Get)
				r.Patch("/{id}/status", a.invoices.UpdateStatus)
				r.Get("/{id}/payment-qr", a.invoices.PaymentQR)
			})
		})
	})

	return r
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := a.db.PingContext(ctx); err != nil {
		a.log.Warnw("health check failed", "error", err)
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
