package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

func TestStorage_ReserveSeat(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerUID := factory.CreateUser(t, "Org", "org@example.com", models.RoleOrganizer)

	t.Run("reserve increments counter", func(t *testing.T) {
		eventID := factory.CreateEvent(t, organizerUID, 2, 0)

		reserved, err := storage.ReserveSeat(context.Background(), eventID)
		require.NoError(t, err)
		assert.True(t, reserved)
		assert.Equal(t, 1, factory.TicketsSold(t, eventID))
	})

	t.Run("sold out event rejects reservation", func(t *testing.T) {
		eventID := factory.CreateEvent(t, organizerUID, 3, 3)

		reserved, err := storage.ReserveSeat(context.Background(), eventID)
		require.NoError(t, err)
		assert.False(t, reserved)
		assert.Equal(t, 3, factory.TicketsSold(t, eventID))
	})

	t.Run("concurrent reservations never oversell", func(t *testing.T) {
		const capacity = 5
		const attempts = 20
		eventID := factory.CreateEvent(t, organizerUID, capacity, 0)

		var wg sync.WaitGroup
		results := make(chan bool, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := storage.ReserveSeat(context.Background(), eventID)
				assert.NoError(t, err)
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		var won int
		for ok := range results {
			if ok {
				won++
			}
		}
		assert.Equal(t, capacity, won)
		assert.Equal(t, capacity, factory.TicketsSold(t, eventID))
	})

	t.Run("release returns the seat", func(t *testing.T) {
		eventID := factory.CreateEvent(t, organizerUID, 2, 2)

		require.NoError(t, storage.ReleaseSeat(context.Background(), eventID))
		assert.Equal(t, 1, factory.TicketsSold(t, eventID))

		reserved, err := storage.ReserveSeat(context.Background(), eventID)
		require.NoError(t, err)
		assert.True(t, reserved)
	})

	t.Run("release on empty counter is a no-op", func(t *testing.T) {
		eventID := factory.CreateEvent(t, organizerUID, 2, 0)

		require.NoError(t, storage.ReleaseSeat(context.Background(), eventID))
		assert.Equal(t, 0, factory.TicketsSold(t, eventID))
	})
}

func TestStorage_CreateTicket_Duplicate(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerUID := factory.CreateUser(t, "Org", "org@example.com", models.RoleOrganizer)
	attendeeUID := factory.CreateUser(t, "Alice", "alice@example.com", models.RoleAttendee)
	eventID := factory.CreateEvent(t, organizerUID, 10, 0)

	ctx := context.Background()
	first, err := storage.CreateTicket(ctx, models.Ticket{
		EventID:       eventID,
		AttendeeUID:   attendeeUID,
		PurchasePrice: 500,
		TokenID:       "token-1",
	})
	require.NoError(t, err)
	require.NotZero(t, first)

	// Второй билет той же пары (событие, посетитель) нарушает уникальность
	// и должен вернуться доменной ошибкой, а не голой ошибкой драйвера.
	_, err = storage.CreateTicket(ctx, models.Ticket{
		EventID:       eventID,
		AttendeeUID:   attendeeUID,
		PurchasePrice: 500,
		TokenID:       "token-2",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStorage_MarkTicketCheckedIn(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerUID := factory.CreateUser(t, "Org", "org@example.com", models.RoleOrganizer)
	attendeeUID := factory.CreateUser(t, "Alice", "alice@example.com", models.RoleAttendee)
	eventID := factory.CreateEvent(t, organizerUID, 10, 1)

	ticketID := factory.CreateTicket(t, eventID, attendeeUID, "token-42", false)

	checked, err := storage.MarkTicketCheckedIn(context.Background(), ticketID)
	require.NoError(t, err)
	assert.True(t, checked)

	// Второй проход по тому же билету должен проиграть гонку за флаг.
	checked, err = storage.MarkTicketCheckedIn(context.Background(), ticketID)
	require.NoError(t, err)
	assert.False(t, checked)

	got, err := storage.GetTicketByAttendeeAndEvent(context.Background(), attendeeUID, eventID)
	require.NoError(t, err)
	assert.True(t, got.IsCheckedIn)
	assert.Equal(t, "token-42", got.TokenID)
}

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Name:           "Alice",
		Email:          "alice@example.com",
		PasswordHash:   "hashedpassword",
		Role:           models.RoleAttendee,
		PlatformUserID: "evt-usr-test",
		WalletAddress:  "0xALICE",
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	t.Run("get by platform id", func(t *testing.T) {
		got, err := storage.GetUserByPlatformID(ctx, "evt-usr-test")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
		assert.Equal(t, "0xALICE", got.WalletAddress)
	})

	t.Run("unknown platform id", func(t *testing.T) {
		_, err := storage.GetUserByPlatformID(ctx, "evt-usr-ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := storage.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, storage.UpdatePasswordHash(ctx, uid, "newhash"))

		got, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)
	})

	t.Run("update password for unknown uid", func(t *testing.T) {
		err := storage.UpdatePasswordHash(ctx, "00000000-0000-0000-0000-000000000000", "newhash")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_GetEventAnalytics(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	organizerUID := factory.CreateUser(t, "Org", "org@example.com", models.RoleOrganizer)
	alice := factory.CreateUser(t, "Alice", "alice@example.com", models.RoleAttendee)
	bob := factory.CreateUser(t, "Bob", "bob@example.com", models.RoleAttendee)

	eventID := factory.CreateEvent(t, organizerUID, 10, 2)
	factory.CreateTicket(t, eventID, alice, "token-1", true)
	factory.CreateTicket(t, eventID, bob, "token-2", false)

	got, err := storage.GetEventAnalytics(context.Background(), eventID)
	require.NoError(t, err)

	assert.Equal(t, eventID, got.EventID)
	assert.Equal(t, 2, got.TicketsSold)
	assert.Equal(t, 10, got.Capacity)
	assert.Equal(t, 1000, got.Revenue)
	assert.Equal(t, 1, got.CheckedInCount)
	assert.InDelta(t, 20.0, got.OccupancyPercent, 0.001)
}
