package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/rizkypratama/crm-management/internal/access"
	"github.com/rizkypratama/crm-management/internal/actor"
	"github.com/rizkypratama/crm-management/internal/auth"
	"github.com/rizkypratama/crm-management/internal/communication"
	"github.com/rizkypratama/crm-management/internal/customer"
	"github.com/rizkypratama/crm-management/internal/lead"
	"github.com/rizkypratama/crm-management/internal/opportunity"
	"github.com/rizkypratama/crm-management/internal/transport/middleware"
	"github.com/rizkypratama/crm-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth          *auth.Handler
	Actor         *actor.Handler
	Access        *access.Handler
	Lead          *lead.Handler
	Customer      *customer.Handler
	Opportunity   *opportunity.Handler
	Communication *communication.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	adminOnly := auth.NewRoleAuthorization(logger).RequireAdmin()

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})

			r.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)

				if h.Actor != nil {
					pr.Get("/users/me", h.Actor.GetCurrentUser)
					pr.Get("/users/available", h.Actor.GetAvailableUsers)
				}

				if h.Access != nil {
					pr.Route("/access", func(ar chi.Router) {
						ar.Post("/requests", h.Access.SendRequest)
						ar.Get("/requests/pending", h.Access.GetPendingRequests)
						ar.Patch("/requests/{id}", h.Access.UpdateRequestStatus)
						ar.Get("/requests/history", h.Access.GetAccessHistory)
						ar.Get("/grantors", h.Access.GetManagedUsers)
						ar.Post("/revoke", h.Access.RevokeAccess)
					})

					pr.Group(func(admr chi.Router) {
						admr.Use(adminOnly)
						admr.Put("/users/{id}/permission", h.Access.UpdateUserPermission)
					})
				}

				if h.Lead != nil {
					pr.Route("/leads", func(lr chi.Router) {
						lr.Post("/", h.Lead.CreateLead)
						lr.Get("/", h.Lead.GetLeads)
						lr.Get("/{id}", h.Lead.GetLead)
						lr.Put("/{id}", h.Lead.UpdateLead)
						lr.Delete("/{id}", h.Lead.DeleteLead)
					})
				}

				if h.Customer != nil {
					pr.Route("/customers", func(cr chi.Router) {
						cr.Post("/", h.Customer.CreateCustomer)
						cr.Get("/", h.Customer.GetCustomers)
						cr.Get("/{id}", h.Customer.GetCustomer)
						cr.Put("/{id}", h.Customer.UpdateCustomer)
						cr.Delete("/{id}", h.Customer.DeleteCustomer)
					})
				}

				if h.Opportunity != nil {
					pr.Route("/opportunities", func(or chi.Router) {
						or.Post("/", h.Opportunity.CreateOpportunity)
						or.Get("/", h.Opportunity.GetOpportunities)
						or.Get("/{id}", h.Opportunity.GetOpportunity)
						or.Put("/{id}", h.Opportunity.UpdateOpportunity)
						or.Delete("/{id}", h.Opportunity.DeleteOpportunity)
					})
				}

				if h.Communication != nil {
					pr.Route("/communications", func(cr chi.Router) {
						cr.Post("/", h.Communication.CreateCommunication)
						cr.Get("/", h.Communication.GetCommunications)
						cr.Get("/{id}", h.Communication.GetCommunication)
						cr.Delete("/{id}", h.Communication.DeleteCommunication)
					})
				}
			})
		}
	})
}
