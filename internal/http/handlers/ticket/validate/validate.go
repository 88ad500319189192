// Package validate реализует HTTP-обработчик проверки билета на входе.
//
// Организатор предъявляет платформенный идентификатор посетителя и
// идентификатор события; обработчик вызывает бизнес-логику отметки
// билета использованным и возвращает имя посетителя при успехе.
// Повторная проверка и уже использованный токен дают различимые ответы.
package validate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/Chinmaya-shah/evently-backend/internal/http/response"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/sl"
	"github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
)

// Request — входные данные для проверки билета.
type Request struct {
	PlatformUserID string `json:"platform_user_id" validate:"required"`
	EventID        int    `json:"event_id" validate:"required,gt=0"`
}

// Handler управляет HTTP-запросами на проверку билетов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики проверки билетов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики проверки билета.
type Service interface {
	Validate(ctx context.Context, platformUserID string, eventID int) (string, error)
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
	const op = "handlers.ticket.validate"
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

	attendeeName, err := h.service.Validate(r.Context(), req.PlatformUserID, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrUserNotFound):
			log.Error("platform user not found", slog.String("platform_user_id", req.PlatformUserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user with this platform id not found"))
		case errors.Is(err, ticket.ErrTicketNotFound):
			log.Error("ticket not found for event", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no ticket found for this user and event"))
		case errors.Is(err, ticket.ErrAlreadyCheckedIn):
			log.Error("ticket already checked in", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("ticket has already been used for entry"))
		case errors.Is(err, ticket.ErrTokenAlreadyUsed):
			log.Error("token already used on chain", slog.Int("event_id", req.EventID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("ticket token is already marked as used"))
		default:
			log.Error("failed to validate ticket", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("server error during ticket validation"))
		}
		return
	}

	log.Info("ticket validated", slog.String("attendee", attendeeName))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "ticket validated successfully",
		"user":    map[string]string{"name": attendeeName},
	}))
}
