package purchase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Chinmaya-shah/evently-backend/internal/http/middlewarectx"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
	"github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, attendeeUID string, eventID int) (*models.Ticket, error) {
	args := m.Called(ctx, attendeeUID, eventID)
	if res := args.Get(0); res != nil {
		return res.(*models.Ticket), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPurchaseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		attendeeUID    string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная покупка билета",
			body:        `{"event_id": 1}`,
			attendeeUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "user-uid", 1).Return(&models.Ticket{
					ID:      7,
					EventID: 1,
					TokenID: "token-42",
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"token_id":"token-42"`,
		},
		{
			name:           "некорректное тело запроса",
			body:           `{bad json`,
			attendeeUID:    "user-uid",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отсутствует event_id",
			body:           `{}`,
			attendeeUID:    "user-uid",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "нет UID в контексте",
			body:           `{"event_id": 1}`,
			attendeeUID:    "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:        "событие не найдено",
			body:        `{"event_id": 99}`,
			attendeeUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "user-uid", 99).Return(nil, ticket.ErrEventNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"event not found"`,
		},
		{
			name:        "билеты распроданы",
			body:        `{"event_id": 1}`,
			attendeeUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "user-uid", 1).Return(nil, ticket.ErrSoldOut)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"event is sold out"`,
		},
		{
			name:        "повторная покупка отклоняется конфликтом",
			body:        `{"event_id": 1}`,
			attendeeUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "user-uid", 1).Return(nil, ticket.ErrAlreadyPurchased)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"ticket already purchased for this event"`,
		},
		{
			name:        "отказ чеканки скрыт за общей ошибкой",
			body:        `{"event_id": 1}`,
			attendeeUID: "user-uid",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "user-uid", 1).
					Return(nil, errors.Join(ticket.ErrMintFailed, errors.New("chain unavailable")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"server error during ticket purchase"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/tickets/purchase", strings.NewReader(tt.body))
			if tt.attendeeUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.attendeeUID))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
