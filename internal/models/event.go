// Package models содержит доменные структуры, описывающие событие,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Event представляет собой основную модель события,
// используемую в бизнес-логике и хранилище.
// Инвариант: TicketsSold никогда не превышает Capacity.
type Event struct {
	ID           int       `json:"id"`            // Идентификатор события
	Name         string    `json:"name"`          // Название события
	Description  string    `json:"description"`   // Описание
	Venue        string    `json:"venue"`         // Место проведения
	Date         time.Time `json:"date"`          // Дата проведения
	TicketPrice  int       `json:"ticket_price"`  // Цена билета
	Capacity     int       `json:"capacity"`      // Вместимость
	TicketsSold  int       `json:"tickets_sold"`  // Количество проданных билетов
	OrganizerUID string    `json:"organizer_uid"` // UID организатора, создавшего событие
}

// DummyEvent используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Event.
// Дата приходит в виде строки, чтобы её можно было валидировать и парсить вручную.
type DummyEvent struct {
	Name        string `json:"name" validate:"required"`             // Название события
	Description string `json:"description"`                          // Описание
	Venue       string `json:"venue" validate:"required"`            // Место проведения
	Date        string `json:"date" validate:"required"`             // Дата в формате 02-01-2006
	TicketPrice int    `json:"ticket_price" validate:"required,gt=0"` // Цена билета (>0)
	Capacity    int    `json:"capacity" validate:"required,gt=0"`    // Вместимость (>0)
}

// EventAnalytics агрегирует показатели продаж по событию для организатора.
type EventAnalytics struct {
	EventID          int     `json:"event_id"`
	Name             string  `json:"name"`
	TicketsSold      int     `json:"tickets_sold"`
	Capacity         int     `json:"capacity"`
	Revenue          int     `json:"revenue"`           // Сумма по фактическим ценам покупки
	OccupancyPercent float64 `json:"occupancy_percent"` // Заполненность в процентах
	CheckedInCount   int     `json:"checked_in_count"`  // Количество гостей, прошедших контроль
}
