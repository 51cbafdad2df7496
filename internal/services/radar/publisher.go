package radar

import (
	"github.com/streadway/amqp"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/rabbitmq"
)

// QueuePublisher публикует задания рассылки в обменник RabbitMQ.
type QueuePublisher struct {
	ch *amqp.Channel
}

// NewQueuePublisher создает публикатор поверх открытого канала RabbitMQ.
func NewQueuePublisher(ch *amqp.Channel) *QueuePublisher {
	return &QueuePublisher{ch: ch}
}

// Publish публикует задание в очередь радара.
func (p *QueuePublisher) Publish(job models.AlertJob) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.AlertsExchange, "radar", job)
}
