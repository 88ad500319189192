// Package evently предоставляет маршруты для основного приложения.
package evently

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/auth/login"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/auth/register"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventanalytics"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventcreate"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventlist"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventread"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventremove"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/event/eventupdate"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/health"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/ticket/mytickets"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/ticket/purchase"
	"github.com/Chinmaya-shah/evently-backend/internal/http/handlers/ticket/validate"
	"github.com/Chinmaya-shah/evently-backend/internal/http/middlewarectx"
	authservice "github.com/Chinmaya-shah/evently-backend/internal/services/auth"
	eventservice "github.com/Chinmaya-shah/evently-backend/internal/services/event"
	ticketservice "github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
	"github.com/Chinmaya-shah/evently-backend/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service, eventService *eventservice.Service,
	ticketService *ticketservice.Service, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Get("/events", eventlist.New(logger, eventService).ServeHTTP)
		r.Get("/events/{id}", eventread.New(logger, eventService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/tickets/purchase", purchase.New(logger, ticketService).ServeHTTP)
			r.Get("/tickets/my", mytickets.New(logger, ticketService).ServeHTTP)

			// Операции организатора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireOrganizer(logger))
				r.Post("/events", eventcreate.New(logger, eventService).ServeHTTP)
				r.Put("/events/{id}", eventupdate.New(logger, eventService).ServeHTTP)
				r.Delete("/events/{id}", eventremove.New(logger, eventService).ServeHTTP)
				r.Get("/events/{id}/analytics", eventanalytics.New(logger, eventService).ServeHTTP)
				r.Post("/tickets/validate", validate.New(logger, ticketService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
