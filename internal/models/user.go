// Package models содержит доменную модель пользователя платформы,
// включающую данные учётной записи, хэш пароля, роль и постоянный
// публичный идентификатор. Структура используется в бизнес-логике
// и при работе с хранилищем.
package models

// Роли пользователей платформы.
const (
	RoleAttendee  = "attendee"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UID            string // Уникальный идентификатор пользователя в базе
	Name           string // Отображаемое имя
	Email          string // Электронная почта, уникальная, в нижнем регистре
	PasswordHash   string // Хэш пароля пользователя
	Role           string // Роль пользователя: attendee, organizer или admin
	PlatformUserID string // Постоянный публичный идентификатор вида evt-usr-<uuid>
	WalletAddress  string // Адрес кошелька для чеканки билетов
}
