package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Chinmaya-shah/evently-backend/internal/migrations"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
// и применяет к ней миграции проекта.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil && storage.DB.Ping() == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to run migrations")

	cleanup := func() {
		_ = storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, name, email, role string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, role, platform_user_id)
		VALUES ($1, $2, 'hashedpassword', $3, $4)
		RETURNING uid`,
		name, email, role, "evt-usr-"+uuid.New().String()).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateEvent создает тестовое событие с заданными продажами и возвращает его ID
func (f *TestDataFactory) CreateEvent(t *testing.T, organizerUID string, capacity, sold int) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO events
		(name, description, venue, date, ticket_price, capacity, tickets_sold, organizer_uid)
		VALUES ('GopherCon', 'annual meetup', 'Moscow', $1, 500, $2, $3, $4)
		RETURNING id`,
		time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC), capacity, sold, organizerUID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTicket создает тестовый билет и возвращает его ID
func (f *TestDataFactory) CreateTicket(t *testing.T, eventID int, attendeeUID, tokenID string, checkedIn bool) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO tickets
		(event_id, attendee_uid, purchase_price, token_id, is_checked_in)
		VALUES ($1, $2, 500, $3, $4)
		RETURNING id`,
		eventID, attendeeUID, tokenID, checkedIn).Scan(&id)
	require.NoError(t, err)
	return id
}

// PlatformID возвращает публичный идентификатор пользователя
func (f *TestDataFactory) PlatformID(t *testing.T, userUID string) string {
	var platformID string
	err := f.storage.DB.QueryRow(`SELECT platform_user_id FROM users WHERE uid = $1`, userUID).Scan(&platformID)
	require.NoError(t, err)
	return platformID
}

// TicketsSold возвращает счётчик проданных билетов события
func (f *TestDataFactory) TicketsSold(t *testing.T, eventID int) int {
	var sold int
	err := f.storage.DB.QueryRow(`SELECT tickets_sold FROM events WHERE id = $1`, eventID).Scan(&sold)
	require.NoError(t, err)
	return sold
}

// GetTestEvent возвращает стандартное тестовое событие
func GetTestEvent(organizerUID string) models.Event {
	return models.Event{
		Name:         "GopherCon",
		Description:  "annual meetup",
		Venue:        "Moscow",
		Date:         time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		TicketPrice:  500,
		Capacity:     100,
		OrganizerUID: organizerUID,
	}
}
