// Package eventanalytics реализует HTTP-обработчик для получения показателей
// продаж события его организатором.
package eventanalytics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Chinmaya-shah/evently-backend/internal/http/middlewarectx"
	"github.com/Chinmaya-shah/evently-backend/internal/http/response"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/sl"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
	"github.com/Chinmaya-shah/evently-backend/internal/services/event"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Analytics(ctx context.Context, id int, organizerUID, role string) (*models.EventAnalytics, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.analytics"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	organizerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || organizerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	res, err := h.service.Analytics(r.Context(), id, organizerUID, role)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrEventNotFound):
			log.Error("event not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, event.ErrNotOwner):
			log.Error("event belongs to another organizer", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("event belongs to another organizer"))
		default:
			log.Error("failed to get event analytics", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get event analytics"))
		}
		return
	}

	log.Info("success to get event analytics", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"analytics": res,
	}))
}
