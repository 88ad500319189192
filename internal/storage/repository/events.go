package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// CreateEvent сохраняет новое событие и возвращает его ID.
func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (int, error) {
	const op = "storage.CreateEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO events (name, description, venue, date, ticket_price, capacity,
			      tickets_sold, organizer_uid)
			  VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		event.Name, event.Description, event.Venue, event.Date, event.TicketPrice,
		event.Capacity, event.OrganizerUID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetEvent возвращает событие по его ID.
func (s *Storage) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	const op = "storage.GetEvent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, venue, date, ticket_price, capacity,
			      tickets_sold, organizer_uid
			  FROM events
			  WHERE id = $1`
	e := &models.Event{}
	row := s.DB.QueryRowContext(ctx, query, id)
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Venue, &e.Date,
		&e.TicketPrice, &e.Capacity, &e.TicketsSold, &e.OrganizerUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

// ListEvents возвращает список событий с пагинацией.
func (s *Storage) ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	const op = "storage.ListEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, venue, date, ticket_price, capacity,
			      tickets_sold, organizer_uid
			  FROM events
			  ORDER BY date
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Event
	for rows.Next() {
		var e models.Event
		if err = rows.Scan(&e.ID, &e.Name, &e.Description, &e.Venue, &e.Date,
			&e.TicketPrice, &e.Capacity, &e.TicketsSold, &e.OrganizerUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateEvent обновляет описание события и возвращает количество затронутых строк.
// Счётчик проданных билетов этим запросом не меняется.
func (s *Storage) UpdateEvent(ctx context.Context, event models.Event, id int) (int, error) {
	const op = "storage.UpdateEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE events
			  SET name = $1, description = $2, venue = $3, date = $4,
			      ticket_price = $5, capacity = GREATEST($6, tickets_sold)
			  WHERE id = $7`
	res, err := s.DB.ExecContext(ctx, query,
		event.Name, event.Description, event.Venue, event.Date,
		event.TicketPrice, event.Capacity, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// RemoveEvent удаляет событие по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveEvent(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveEvent"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// ReserveSeat атомарно резервирует одно место на событии.
// Счётчик увеличивается только если остались свободные места,
// поэтому два конкурентных запроса не могут продать билет сверх вместимости.
// Возвращает false, если событие распродано.
func (s *Storage) ReserveSeat(ctx context.Context, eventID int) (bool, error) {
	const op = "storage.ReserveSeat"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE events
			  SET tickets_sold = tickets_sold + 1
			  WHERE id = $1 AND tickets_sold < capacity`
	res, err := s.DB.ExecContext(ctx, query, eventID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected == 1, nil
}

// ReleaseSeat возвращает зарезервированное место, если чеканка билета не состоялась.
func (s *Storage) ReleaseSeat(ctx context.Context, eventID int) error {
	const op = "storage.ReleaseSeat"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE events
			  SET tickets_sold = tickets_sold - 1
			  WHERE id = $1 AND tickets_sold > 0`
	if _, err := s.DB.ExecContext(ctx, query, eventID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetEventAnalytics возвращает агрегированные показатели продаж по событию.
func (s *Storage) GetEventAnalytics(ctx context.Context, eventID int) (*models.EventAnalytics, error) {
	const op = "storage.GetEventAnalytics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT e.id, e.name, e.tickets_sold, e.capacity,
			      COALESCE(SUM(t.purchase_price), 0),
			      COALESCE(COUNT(t.id) FILTER (WHERE t.is_checked_in), 0)
			  FROM events e
			  LEFT JOIN tickets t ON t.event_id = e.id
			  WHERE e.id = $1
			  GROUP BY e.id`
	a := &models.EventAnalytics{}
	row := s.DB.QueryRowContext(ctx, query, eventID)
	if err := row.Scan(&a.EventID, &a.Name, &a.TicketsSold, &a.Capacity,
		&a.Revenue, &a.CheckedInCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if a.Capacity > 0 {
		a.OccupancyPercent = float64(a.TicketsSold) / float64(a.Capacity) * 100
	}
	return a, nil
}
