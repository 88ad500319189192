package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.purchase", RoutingKey: "purchase"},
		// при необходимости дополнительные очереди для других воркеров
	}
}
