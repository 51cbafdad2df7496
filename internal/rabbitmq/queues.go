package rabbitmq

// QueueConfig описывает очередь и её ключ маршрутизации в обменнике рассылок.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetAlertQueues возвращает очереди заданий рассылки.
func GetAlertQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "alerts.radar", RoutingKey: "radar"},
	}
}
