/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Wires the operation menu and table endpoints onto a chi router. The
  engine has no other network surface; everything an operator did through
  the old spreadsheet menu lives under /api/ops.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for an admin frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// The operation menu.
		r.Route("/ops", func(r chi.Router) {
			r.Post("/ingest", h.RunIngest)
			r.Post("/strikes", h.RunStrikes)
			r.Post("/deduct", h.RunDeduction)
			r.Post("/deduct/{username}", h.DeductOne)
			r.Post("/notify", h.RunNotify)
			r.Post("/vacations/refresh", h.RefreshVacations)
			r.Post("/auto", h.RunAuto)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", h.GetDashboard)
			r.Post("/", h.CreateUser)
		})

		r.Route("/params", func(r chi.Router) {
			r.Get("/{name}", h.GetParam)
			r.Put("/{name}", h.SetParam)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
		})

		r.Route("/vacations", func(r chi.Router) {
			r.Get("/", h.ListVacations)
			r.Post("/", h.CreateVacation)
		})
	})

	return r
}
