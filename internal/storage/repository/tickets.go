package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// CreateTicket сохраняет новый билет и возвращает его ID.
// Идентификатор токена фиксируется при создании и больше не меняется.
func (s *Storage) CreateTicket(ctx context.Context, ticket models.Ticket) (int, error) {
	const op = "storage.CreateTicket"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO tickets (event_id, attendee_uid, purchase_price, token_id, is_checked_in)
			  VALUES ($1, $2, $3, $4, FALSE)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		ticket.EventID, ticket.AttendeeUID, ticket.PurchasePrice,
		ticket.TokenID).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetTicketByAttendeeAndEvent возвращает билет по паре (посетитель, событие).
func (s *Storage) GetTicketByAttendeeAndEvent(ctx context.Context, attendeeUID string, eventID int) (*models.Ticket, error) {
	const op = "storage.GetTicketByAttendeeAndEvent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, event_id, attendee_uid, purchase_price, token_id, is_checked_in, created_at
			  FROM tickets
			  WHERE attendee_uid = $1 AND event_id = $2`
	t := &models.Ticket{}
	row := s.DB.QueryRowContext(ctx, query, attendeeUID, eventID)
	if err := row.Scan(&t.ID, &t.EventID, &t.AttendeeUID, &t.PurchasePrice,
		&t.TokenID, &t.IsCheckedIn, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTicketsByAttendee возвращает билеты посетителя с пагинацией.
func (s *Storage) ListTicketsByAttendee(ctx context.Context, attendeeUID string, limit, offset int) ([]*models.Ticket, error) {
	const op = "storage.ListTicketsByAttendee"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, event_id, attendee_uid, purchase_price, token_id, is_checked_in, created_at
			  FROM tickets
			  WHERE attendee_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, attendeeUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Ticket
	for rows.Next() {
		var t models.Ticket
		if err = rows.Scan(&t.ID, &t.EventID, &t.AttendeeUID, &t.PurchasePrice,
			&t.TokenID, &t.IsCheckedIn, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkTicketCheckedIn атомарно переводит билет в состояние "прошёл контроль".
// Флаг меняется только из состояния FALSE, поэтому из двух конкурентных
// попыток прохода одна всегда получит false.
func (s *Storage) MarkTicketCheckedIn(ctx context.Context, ticketID int) (bool, error) {
	const op = "storage.MarkTicketCheckedIn"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tickets
			  SET is_checked_in = TRUE
			  WHERE id = $1 AND is_checked_in = FALSE`
	res, err := s.DB.ExecContext(ctx, query, ticketID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected == 1, nil
}
