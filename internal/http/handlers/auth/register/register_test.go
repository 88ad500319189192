package register

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
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, email, password, role, walletAddress string) (string, string, error) {
	args := m.Called(ctx, name, email, password, role, walletAddress)
	return args.String(0), args.String(1), args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: `{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "secret123", "", "").
					Return("uid-1", "evt-usr-abc", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"platform_user_id":"evt-usr-abc"`,
		},
		{
			name: "регистрация организатора с кошельком",
			body: `{"name": "Bob", "email": "bob@example.com", "password": "secret123", "role": "organizer", "wallet_address": "0xORG"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Bob", "bob@example.com", "secret123", "organizer", "0xORG").
					Return("uid-2", "evt-usr-def", nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"message":"user created successfully"`,
		},
		{
			name:           "некорректное тело запроса",
			body:           `{bad json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "невалидный email",
			body:           `{"name": "Alice", "email": "not-an-email", "password": "secret123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name:           "недопустимая роль",
			body:           `{"name": "Eve", "email": "eve@example.com", "password": "secret123", "role": "admin"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Role must be one of`,
		},
		{
			name: "ошибка сервиса регистрации",
			body: `{"name": "Alice", "email": "alice@example.com", "password": "secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "secret123", "", "").
					Return("", "", errors.New("duplicate email"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
