package models

import "time"

// Ticket связывает событие и посетителя, фиксирует цену покупки,
// идентификатор токена из сервиса чеканки и флаг прохождения контроля.
// Инвариант: TokenID назначается ровно один раз при создании;
// IsCheckedIn меняется только в одну сторону, false -> true.
type Ticket struct {
	ID            int       `json:"id"`             // Идентификатор билета
	EventID       int       `json:"event_id"`       // Событие, на которое куплен билет
	AttendeeUID   string    `json:"attendee_uid"`   // UID посетителя
	PurchasePrice int       `json:"purchase_price"` // Цена события на момент покупки
	TokenID       string    `json:"token_id"`       // Идентификатор токена, полученный при чеканке
	IsCheckedIn   bool      `json:"is_checked_in"`  // Флаг прохождения контроля на входе
	CreatedAt     time.Time `json:"created_at"`     // Время покупки
}

// PurchaseConfirmation сообщение для очереди уведомлений о покупке билета.
type PurchaseConfirmation struct {
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EventName     string    `json:"event_name"`
	EventVenue    string    `json:"event_venue"`
	EventDate     time.Time `json:"event_date"`
	TicketID      int       `json:"ticket_id"`
	TokenID       string    `json:"token_id"`
	PurchasePrice int       `json:"purchase_price"`
}
