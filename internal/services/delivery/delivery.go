// Package delivery реализует воркер доставки рассылок: читает задания
// из очереди и отправляет их в Telegram с паузой между сообщениями,
// чтобы не упираться во flood-лимит транспорта.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/metrics"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// Sender отправляет одно сообщение рассылки получателю.
type Sender interface {
	SendAlert(job models.AlertJob) error
}

// Service — воркер доставки.
type Service struct {
	sender  Sender
	limiter *rate.Limiter
	log     *slog.Logger
}

// New создает новый экземпляр Service. floodDelay — минимальная пауза
// между двумя отправками.
func New(sender Sender, floodDelay time.Duration, log *slog.Logger) *Service {
	return &Service{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Every(floodDelay), 1),
		log:     log,
	}
}

// HandleAlertJob обрабатывает одно задание из очереди. Ошибка доставки
// конкретному получателю логируется и не возвращается: остальная
// рассылка не должна останавливаться из-за одного заблокировавшего
// бота пользователя.
func (s *Service) HandleAlertJob(body []byte) error {
	const op = "delivery.HandleAlertJob"
	log := s.log.With(slog.String("op", op))

	var job models.AlertJob
	if err := json.Unmarshal(body, &job); err != nil {
		log.Error("failed to unmarshal alert job", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sender.SendAlert(job); err != nil {
		metrics.AlertsFailed.Inc()
		log.Warn("failed to deliver alert, skipping recipient", sl.UserID(job.UserID), sl.Err(err))
		return nil
	}
	metrics.AlertsSent.Inc()
	return nil
}
