// Package event содержит бизнес-логику для управления событиями и кеширования.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chinmaya-shah/evently-backend/internal/models"
	"github.com/Chinmaya-shah/evently-backend/internal/storage/repository"
)

// ErrNotOwner возвращается, когда событие пытается изменить не его организатор.
var ErrNotOwner = errors.New("event belongs to another organizer")

// ErrEventNotFound возвращается, когда событие отсутствует в хранилище.
var ErrEventNotFound = errors.New("event not found")

// Repository определяет методы для работы с событиями в хранилище.
type Repository interface {
	// CreateEvent добавляет новое событие и возвращает его ID.
	CreateEvent(ctx context.Context, event models.Event) (int, error)
	// GetEvent возвращает событие по ID.
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	// ListEvents возвращает список событий с пагинацией.
	ListEvents(ctx context.Context, limit, offset int) ([]*models.Event, error)
	// UpdateEvent обновляет данные события по ID.
	UpdateEvent(ctx context.Context, event models.Event, id int) (int, error)
	// RemoveEvent удаляет событие по ID и возвращает количество удалённых записей.
	RemoveEvent(ctx context.Context, id int) (int, error)
	// GetEventAnalytics возвращает агрегированные показатели продаж по событию.
	GetEventAnalytics(ctx context.Context, eventID int) (*models.EventAnalytics, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику работы с событиями, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новое событие от имени организатора и возвращает его ID.
func (s *Service) Create(ctx context.Context, organizerUID string, req models.DummyEvent) (int, error) {
	date, err := time.Parse("02-01-2006", req.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date: %w", err)
	}

	entry := models.Event{
		Name:         req.Name,
		Description:  req.Description,
		Venue:        req.Venue,
		Date:         date,
		TicketPrice:  req.TicketPrice,
		Capacity:     req.Capacity,
		OrganizerUID: organizerUID,
	}

	id, err := s.repo.CreateEvent(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new event", slog.Int("id", id))

	entry.ID = id
	cacheKey := fmt.Sprintf("event:%d", id)
	if err := s.cache.Set(cacheKey, entry, time.Hour); err != nil {
		s.log.Warn("failed to cache event", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return id, nil
}

// Read возвращает событие по ID, используя кеш или репозиторий.
func (s *Service) Read(ctx context.Context, id int) (*models.Event, error) {
	var result *models.Event
	cacheKey := fmt.Sprintf("event:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey),
			slog.Any("err", err))
	}
	return result, nil
}

// List возвращает список событий с пагинацией.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	return s.repo.ListEvents(ctx, limit, offset)
}

// Update обновляет событие и инвалидирует кеш.
// Менять событие может только его организатор или администратор.
func (s *Service) Update(ctx context.Context, req models.DummyEvent, id int, organizerUID, role string) (int, error) {
	if err := s.checkOwnership(ctx, id, organizerUID, role); err != nil {
		return 0, err
	}

	date, err := time.Parse("02-01-2006", req.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date: %w", err)
	}

	entry := models.Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Date:        date,
		TicketPrice: req.TicketPrice,
		Capacity:    req.Capacity,
	}
	res, err := s.repo.UpdateEvent(ctx, entry, id)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated event in storage", slog.Int("id", id))

	cacheKey := fmt.Sprintf("event:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return res, nil
}

// Remove удаляет событие по ID и инвалидирует кеш.
// Удалять событие может только его организатор или администратор.
func (s *Service) Remove(ctx context.Context, id int, organizerUID, role string) (int, error) {
	if err := s.checkOwnership(ctx, id, organizerUID, role); err != nil {
		return 0, err
	}

	cacheKey := fmt.Sprintf("event:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	count, err := s.repo.RemoveEvent(ctx, id)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Analytics возвращает показатели продаж по событию для его организатора.
func (s *Service) Analytics(ctx context.Context, id int, organizerUID, role string) (*models.EventAnalytics, error) {
	if err := s.checkOwnership(ctx, id, organizerUID, role); err != nil {
		return nil, err
	}
	result, err := s.repo.GetEventAnalytics(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) checkOwnership(ctx context.Context, id int, organizerUID, role string) error {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if role != models.RoleAdmin && event.OrganizerUID != organizerUID {
		return ErrNotOwner
	}
	return nil
}
