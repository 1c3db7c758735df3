/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for frontend
  5. Organization: Resolves the caller's organization

ORGANIZATION SCOPING:
  In production the organization comes from a verified session managed
  by the authentication layer in front of this service. This router
  reads it from the X-Organization-ID header as a stand-in; requests
  without it are rejected. It is never taken from a request body.

ROUTE GROUPS:
  /api/payments/*          Payment records (recorded receipts)
  /api/transactions/*      Bank transaction import and corrections
  /api/reconciliations/*   Period lifecycle, matching, completion

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clearledger/recon-engine/recon"
)

type contextKey string

const orgKey contextKey = "organization"

// OrganizationID returns the calling organization from the request
// context. Empty only if the middleware did not run.
func OrganizationID(r *http.Request) recon.OrganizationID {
	org, _ := r.Context().Value(orgKey).(recon.OrganizationID)
	return org
}

// RequireOrganization rejects requests without an organization and
// stores the resolved organization on the context.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org := r.Header.Get("X-Organization-ID")
		if org == "" {
			writeError(w, http.StatusUnauthorized, "Missing organization", nil)
			return
		}
		ctx := context.WithValue(r.Context(), orgKey, recon.OrganizationID(org))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Organization-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(RequireOrganization)

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
		})

		// Bank transaction routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/import", h.ImportTransactions)
			r.Get("/{id}", h.GetTransaction)
			r.Patch("/{id}", h.UpdateTransaction)
		})

		// Reconciliation routes
		r.Route("/reconciliations", func(r chi.Router) {
			r.Get("/", h.ListReconciliations)
			r.Post("/", h.CreateReconciliation)
			r.Get("/{id}", h.GetReconciliation)
			r.Post("/{id}/automatch", h.AutoMatch)
			r.Post("/{id}/matches", h.ManualMatch)
			r.Post("/{id}/complete", h.CompleteReconciliation)
		})
	})

	return r
}
