// Package notifier публикует уведомления о покупках в очередь RabbitMQ.
package notifier

import (
	"github.com/streadway/amqp"

	"github.com/Chinmaya-shah/evently-backend/internal/lib/rabbitmq"
	"github.com/Chinmaya-shah/evently-backend/internal/models"
)

// Service публикует сообщения о покупке билета в обменник уведомлений.
type Service struct {
	ch *amqp.Channel
}

// New создает новый экземпляр Service.
func New(ch *amqp.Channel) *Service {
	return &Service{ch: ch}
}

// PublishPurchaseConfirmation отправляет подтверждение покупки в очередь.
func (s *Service) PublishPurchaseConfirmation(msg models.PurchaseConfirmation) error {
	return rabbitmq.PublishMessage(s.ch, "notifications", "purchase", msg)
}
