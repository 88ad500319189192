// Package ticket содержит бизнес-логику покупки и контроля билетов.
//
// Покупка координирует запись в хранилище с вызовом внешнего сервиса
// чеканки: место резервируется атомарно до чеканки и возвращается,
// если чеканка не состоялась, поэтому счётчик проданных билетов не
// может превысить вместимость и не меняется при неудачной чеканке.
// Контроль на входе погашает токен во внешнем сервисе и атомарно
// переводит билет в состояние "прошёл контроль".
package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chinmaya-shah/evently-backend/internal/chainservice"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
	"github.com/Chinmaya-shah/evently-backend/internal/storage/repository"
)

// Ошибки доменного уровня. Обработчики отображают их в отдельные
// HTTP-ответы, всё остальное сворачивается в непрозрачную ошибку сервера.
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrSoldOut          = errors.New("event is sold out")
	ErrAlreadyPurchased = errors.New("ticket already purchased for this event")
	ErrMintFailed       = errors.New("failed to mint ticket token")
	ErrUserNotFound     = errors.New("user not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
	// ErrTokenAlreadyUsed сигнализирует о расхождении локального состояния
	// с внешним сервисом: токен погашен, а билет локально не отмечен.
	ErrTokenAlreadyUsed = errors.New("token already used on chain")
)

// EventRepository определяет методы для работы с событиями в хранилище.
type EventRepository interface {
	// GetEvent возвращает событие по ID.
	GetEvent(ctx context.Context, id int) (*models.Event, error)
	// ReserveSeat атомарно резервирует место, false если мест нет.
	ReserveSeat(ctx context.Context, eventID int) (bool, error)
	// ReleaseSeat возвращает зарезервированное место.
	ReleaseSeat(ctx context.Context, eventID int) error
}

// TicketRepository определяет методы для работы с билетами в хранилище.
type TicketRepository interface {
	// CreateTicket добавляет новый билет и возвращает его ID.
	CreateTicket(ctx context.Context, ticket models.Ticket) (int, error)
	// GetTicketByAttendeeAndEvent возвращает билет по паре (посетитель, событие).
	GetTicketByAttendeeAndEvent(ctx context.Context, attendeeUID string, eventID int) (*models.Ticket, error)
	// ListTicketsByAttendee возвращает билеты посетителя с пагинацией.
	ListTicketsByAttendee(ctx context.Context, attendeeUID string, limit, offset int) ([]*models.Ticket, error)
	// MarkTicketCheckedIn атомарно отмечает проход, false если билет уже отмечен.
	MarkTicketCheckedIn(ctx context.Context, ticketID int) (bool, error)
}

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByPlatformID возвращает пользователя по публичному идентификатору.
	GetUserByPlatformID(ctx context.Context, platformUserID string) (*models.User, error)
}

// ChainClient описывает внешний сервис чеканки билетов.
type ChainClient interface {
	// Mint выпускает токен на адрес кошелька и возвращает его идентификатор.
	Mint(ctx context.Context, walletAddress string) (string, error)
	// MarkUsed погашает токен, возвращает chainservice.ErrTokenAlreadyUsed,
	// если токен уже был погашен.
	MarkUsed(ctx context.Context, tokenID string) error
}

// Notifier публикует уведомление о покупке билета.
type Notifier interface {
	PublishPurchaseConfirmation(msg models.PurchaseConfirmation) error
}

// Cache описывает методы для инвалидации кешированных событий.
type Cache interface {
	Invalidate(key string) error
}

// Service реализует покупку и контроль билетов.
type Service struct {
	events        EventRepository
	tickets       TicketRepository
	users         UserRepository
	chain         ChainClient
	notifier      Notifier
	cache         Cache
	defaultWallet string
	log           *slog.Logger
}

// New создает новый экземпляр Service.
func New(events EventRepository, tickets TicketRepository, users UserRepository,
	chain ChainClient, notifier Notifier, cache Cache, defaultWallet string, log *slog.Logger) *Service {
	return &Service{
		events:        events,
		tickets:       tickets,
		users:         users,
		chain:         chain,
		notifier:      notifier,
		cache:         cache,
		defaultWallet: defaultWallet,
		log:           log,
	}
}

// Purchase продаёт один билет на событие аутентифицированному посетителю.
//
// Порядок шагов: событие -> вместимость -> проверка повторной покупки ->
// резерв места -> чеканка -> запись билета -> уведомление. Повторная
// покупка отсекается до резерва и чеканки, чтобы не выпускать токен,
// который заведомо не будет записан. Резерв возвращается, если чеканка
// или запись билета не состоялись, поэтому частичного состояния не остаётся.
func (s *Service) Purchase(ctx context.Context, attendeeUID string, eventID int) (*models.Ticket, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.TicketsSold >= event.Capacity {
		return nil, ErrSoldOut
	}

	if _, err := s.tickets.GetTicketByAttendeeAndEvent(ctx, attendeeUID, eventID); err == nil {
		return nil, ErrAlreadyPurchased
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	attendee, err := s.users.GetUser(ctx, attendeeUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	walletAddress := attendee.WalletAddress
	if walletAddress == "" {
		walletAddress = s.defaultWallet
	}

	reserved, err := s.events.ReserveSeat(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrSoldOut
	}

	tokenID, err := s.chain.Mint(ctx, walletAddress)
	if err != nil {
		s.releaseSeat(eventID)
		return nil, fmt.Errorf("%w: %w", ErrMintFailed, err)
	}

	ticket := models.Ticket{
		EventID:       eventID,
		AttendeeUID:   attendeeUID,
		PurchasePrice: event.TicketPrice,
		TokenID:       tokenID,
		CreatedAt:     time.Now().UTC(),
	}
	id, err := s.tickets.CreateTicket(ctx, ticket)
	if err != nil {
		s.releaseSeat(eventID)
		if errors.Is(err, repository.ErrDuplicate) {
			// Две конкурентные покупки одного посетителя прошли
			// предварительную проверку. Токен проигравшей уже выпущен
			// и нигде не записан, поэтому фиксируется в логе.
			s.log.Warn("duplicate purchase left unrecorded token",
				slog.Int("event_id", eventID),
				slog.String("attendee_uid", attendeeUID),
				slog.String("token_id", tokenID))
			return nil, ErrAlreadyPurchased
		}
		return nil, err
	}
	ticket.ID = id
	s.log.Info("ticket purchased",
		slog.Int("ticket_id", id),
		slog.Int("event_id", eventID),
		slog.String("token_id", tokenID))

	cacheKey := fmt.Sprintf("event:%d", eventID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	// Уведомление отправляется по принципу fire-and-forget:
	// отказ брокера не влияет на результат покупки.
	if err := s.notifier.PublishPurchaseConfirmation(models.PurchaseConfirmation{
		Email:         attendee.Email,
		Name:          attendee.Name,
		EventName:     event.Name,
		EventVenue:    event.Venue,
		EventDate:     event.Date,
		TicketID:      id,
		TokenID:       tokenID,
		PurchasePrice: ticket.PurchasePrice,
	}); err != nil {
		s.log.Warn("failed to publish purchase confirmation", slog.Any("err", err))
	}

	return &ticket, nil
}

// Validate отмечает проход посетителя на событие по его публичному идентификатору.
//
// Повторная попытка прохода по уже отмеченному билету — ошибка, а не no-op.
// Если внешний сервис сообщает, что токен уже погашен, локальный флаг
// не меняется, и вызывающему возвращается отличимая ошибка расхождения.
func (s *Service) Validate(ctx context.Context, platformUserID string, eventID int) (string, error) {
	user, err := s.users.GetUserByPlatformID(ctx, platformUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	ticket, err := s.tickets.GetTicketByAttendeeAndEvent(ctx, user.UID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTicketNotFound
		}
		return "", err
	}

	if ticket.IsCheckedIn {
		return "", ErrAlreadyCheckedIn
	}

	if err := s.chain.MarkUsed(ctx, ticket.TokenID); err != nil {
		if errors.Is(err, chainservice.ErrTokenAlreadyUsed) {
			s.log.Warn("chain state ahead of local ticket state",
				slog.Int("ticket_id", ticket.ID),
				slog.String("token_id", ticket.TokenID))
			return "", ErrTokenAlreadyUsed
		}
		return "", err
	}

	checked, err := s.tickets.MarkTicketCheckedIn(ctx, ticket.ID)
	if err != nil {
		return "", err
	}
	if !checked {
		return "", ErrAlreadyCheckedIn
	}

	s.log.Info("ticket checked in",
		slog.Int("ticket_id", ticket.ID),
		slog.Int("event_id", eventID))
	return user.Name, nil
}

// ListMyTickets возвращает билеты посетителя с пагинацией.
func (s *Service) ListMyTickets(ctx context.Context, attendeeUID string, limit, offset int) ([]*models.Ticket, error) {
	return s.tickets.ListTicketsByAttendee(ctx, attendeeUID, limit, offset)
}

// releaseSeat возвращает резерв места после неудачной продажи.
// Контекст запроса к этому моменту может быть уже отменён,
// поэтому используется отдельный с коротким таймаутом.
func (s *Service) releaseSeat(eventID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.ReleaseSeat(ctx, eventID); err != nil {
		s.log.Error("failed to release reserved seat", slog.Int("event_id", eventID), slog.Any("err", err))
	}
}
