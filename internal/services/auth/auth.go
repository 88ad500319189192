// Package auth содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Chinmaya-shah/evently-backend/internal/lib/jwt"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/password"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdatePasswordHash заменяет хэш пароля пользователя.
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Email приводится к нижнему регистру, публичный идентификатор
// генерируется один раз и больше не меняется.
func (s *Service) Register(ctx context.Context, name, email, rawPassword, role, walletAddress string) (string, string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", "", err
	}
	if role == "" {
		role = models.RoleAttendee // дефолтная роль при регистрации
	}
	platformUserID := fmt.Sprintf("evt-usr-%s", uuid.New().String())
	user := models.User{
		Name:           name,
		Email:          strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:   hashed,
		Role:           role,
		PlatformUserID: platformUserID,
		WalletAddress:  walletAddress,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", "", err
	}
	return uid, platformUserID, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Email, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ChangePassword заменяет пароль пользователя на новый.
// Перехэширование выполняется только по этому явному запросу,
// скрытого отслеживания изменения поля нет.
func (s *Service) ChangePassword(ctx context.Context, userUID, newPassword string) error {
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userUID, hashed)
}

// ValidateToken проверяет JWT и возвращает информацию о пользователе.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
