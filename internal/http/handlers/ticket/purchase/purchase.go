// Package purchase реализует HTTP-обработчик покупки билета на событие.
//
// Handler принимает JSON-запрос с идентификатором события, извлекает UID
// посетителя из контекста и вызывает бизнес-логику покупки: проверку
// вместимости, чеканку токена, запись билета и уведомление.
// Доменные отказы отображаются в отдельные HTTP-ответы, все прочие
// ошибки сворачиваются в непрозрачный ответ сервера.
package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Chinmaya-shah/evently-backend/internal/http/middlewarectx"
	"github.com/Chinmaya-shah/evently-backend/internal/http/response"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/sl"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
	"github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
)

// Request — входные данные для покупки билета.
type Request struct {
	EventID int `json:"event_id" validate:"required,gt=0"`
}

// Handler управляет HTTP-запросами на покупку билетов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики покупки билетов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики покупки билета.
type Service interface {
	Purchase(ctx context.Context, attendeeUID string, eventID int) (*models.Ticket, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.purchase"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	attendeeUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || attendeeUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Purchase(r.Context(), attendeeUID, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrEventNotFound):
			log.Error("event not found", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event not found"))
		case errors.Is(err, ticket.ErrSoldOut):
			log.Error("event is sold out", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("event is sold out"))
		case errors.Is(err, ticket.ErrAlreadyPurchased):
			log.Error("ticket already purchased", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("ticket already purchased for this event"))
		default:
			// Сюда попадают и отказ чеканки, и ошибки хранилища.
			// Детали остаются в логе, клиенту уходит общий ответ.
			log.Error("failed to purchase ticket", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("server error during ticket purchase"))
		}
		return
	}

	log.Info("ticket purchased", slog.Int("ticket_id", res.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "ticket purchased and minted successfully",
		"ticket":  res,
	}))
}
