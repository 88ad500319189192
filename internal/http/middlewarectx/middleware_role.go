package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/Chinmaya-shah/evently-backend/internal/http/response"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// RequireOrganizer пропускает только организаторов и администраторов.
// Роль берётся из контекста, заполненного JWTMiddleware.
func RequireOrganizer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || (role != models.RoleOrganizer && role != models.RoleAdmin) {
				log.Error("organizer role required", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("organizer role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
