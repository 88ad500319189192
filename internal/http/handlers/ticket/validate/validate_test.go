package validate

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

	"github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Validate(ctx context.Context, platformUserID string, eventID int) (string, error) {
	args := m.Called(ctx, platformUserID, eventID)
	return args.String(0), args.Error(1)
}

func TestValidateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная проверка билета",
			body: `{"platform_user_id": "evt-usr-abc", "event_id": 1}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-abc", 1).Return("Alice", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"name":"Alice"`,
		},
		{
			name:           "некорректное тело запроса",
			body:           `{bad json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отсутствует platform_user_id",
			body:           `{"event_id": 1}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "пользователь не найден",
			body: `{"platform_user_id": "evt-usr-unknown", "event_id": 1}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-unknown", 1).Return("", ticket.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"user with this platform id not found"`,
		},
		{
			name: "билет не найден",
			body: `{"platform_user_id": "evt-usr-abc", "event_id": 2}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-abc", 2).Return("", ticket.ErrTicketNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"no ticket found for this user and event"`,
		},
		{
			name: "повторный проход по билету",
			body: `{"platform_user_id": "evt-usr-abc", "event_id": 1}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-abc", 1).Return("", ticket.ErrAlreadyCheckedIn)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"ticket has already been used for entry"`,
		},
		{
			name: "токен уже погашен во внешнем сервисе",
			body: `{"platform_user_id": "evt-usr-abc", "event_id": 1}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-abc", 1).Return("", ticket.ErrTokenAlreadyUsed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"ticket token is already marked as used"`,
		},
		{
			name: "ошибка сервиса проверки",
			body: `{"platform_user_id": "evt-usr-abc", "event_id": 1}`,
			setupMock: func(m *MockService) {
				m.On("Validate", mock.Anything, "evt-usr-abc", 1).Return("", errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"server error during ticket validation"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/tickets/validate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
