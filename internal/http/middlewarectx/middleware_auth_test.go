package middlewarectx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Chinmaya-shah/evently-backend/internal/lib/jwt"
)

type AuthServiceMock struct{ mock.Mock }

func (m *AuthServiceMock) ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestJWTMiddleware(t *testing.T) {
	claims := &jwt.CustomClaims{
		Username: "alice@example.com",
		Role:     "attendee",
		UserUID:  "uid-1",
	}

	tests := []struct {
		name           string
		authHeader     string
		setupMock      func(*AuthServiceMock)
		expectedStatus int
		expectNext     bool
	}{
		{
			name:       "valid token fills context",
			authHeader: "Bearer good-token",
			setupMock: func(m *AuthServiceMock) {
				m.On("ValidateToken", mock.Anything, "good-token").Return(claims, nil)
			},
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "missing header",
			authHeader:     "",
			setupMock:      func(_ *AuthServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer header",
			authHeader:     "Basic dXNlcjpwYXNz",
			setupMock:      func(_ *AuthServiceMock) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer bad-token",
			setupMock: func(m *AuthServiceMock) {
				m.On("ValidateToken", mock.Anything, "bad-token").Return(nil, errors.New("token expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authService := new(AuthServiceMock)
			tt.setupMock(authService)

			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				assert.Equal(t, "alice@example.com", r.Context().Value(User))
				assert.Equal(t, "attendee", r.Context().Value(Role))
				assert.Equal(t, "uid-1", r.Context().Value(UserUID))
				w.WriteHeader(http.StatusOK)
			})

			handler := JWTMiddleware(authService, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/tickets/my", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
			authService.AssertExpectations(t)
		})
	}
}

// Общий логгер переживает много запросов, поэтому атрибуты одного
// запроса не должны просачиваться в строки лога следующего.
func TestJWTMiddleware_LoggerNotSharedBetweenRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{}))

	authService := new(AuthServiceMock)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware(authService, logger)(next)

	for _, reqID := range []string{"req-1", "req-2"} {
		req := httptest.NewRequest(http.MethodGet, "/tickets/my", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, reqID))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "request_id=req-1")
	assert.Contains(t, lines[1], "request_id=req-2")
	assert.NotContains(t, lines[1], "req-1")
}

func TestRequireOrganizer(t *testing.T) {
	tests := []struct {
		name           string
		role           any
		expectedStatus int
		expectNext     bool
	}{
		{name: "organizer allowed", role: "organizer", expectedStatus: http.StatusOK, expectNext: true},
		{name: "admin allowed", role: "admin", expectedStatus: http.StatusOK, expectNext: true},
		{name: "attendee rejected", role: "attendee", expectedStatus: http.StatusForbidden},
		{name: "no role in context", role: nil, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RequireOrganizer(newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodPost, "/tickets/validate", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), Role, tt.role))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectNext, nextCalled)
		})
	}
}
