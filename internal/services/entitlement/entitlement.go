// Package entitlement реализует контроль доступа к платной функции:
// проверку права на анализ и выдачу пожизненного доступа после оплаты.
// Оба платёжных канала сходятся в одной операции GrantEntitlement.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/metrics"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

// Платёжные каналы, через которые выдаётся доступ.
const (
	RailCrypto = "nowpayments"
	RailStars  = "telegram_stars"
)

// Repository описывает необходимую часть хранилища. MarkPaid сообщает,
// была ли запись создана впервые: дубликаты платёжных уведомлений
// поглощаются хранилищем.
type Repository interface {
	MarkPaid(ctx context.Context, userID int64) (bool, error)
	MarkTrialConsumed(ctx context.Context, userID int64) error
	IsPaid(ctx context.Context, userID int64) (bool, error)
	HasRemainingTrial(ctx context.Context, userID int64) (bool, error)
	GetUserLanguage(ctx context.Context, userID int64) (string, error)
}

// Notifier отправляет пользователю текстовое сообщение. Отправка
// best-effort: её ошибка не влияет на результат операции.
type Notifier interface {
	SendText(userID int64, text string) error
}

// Decision — результат проверки доступа. Allowed выставлен, когда
// пользователь оплатил доступ или ещё не израсходовал пробный анализ.
type Decision struct {
	Allowed        bool
	Paid           bool
	TrialAvailable bool
}

// Service — сервис контроля доступа.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// Authorize проверяет право пользователя на платную функцию.
// Ошибка хранилища возвращается как ошибка и никогда не трактуется
// как отказ в доступе.
func (s *Service) Authorize(ctx context.Context, userID int64) (Decision, error) {
	const op = "entitlement.Authorize"

	paid, err := s.repo.IsPaid(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if paid {
		return Decision{Allowed: true, Paid: true}, nil
	}

	trial, err := s.repo.HasRemainingTrial(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	return Decision{Allowed: trial, TrialAvailable: trial}, nil
}

// GrantEntitlement выдаёт пожизненный доступ после подтверждённой оплаты.
// Идемпотентна: повторное уведомление о той же оплате не является ошибкой.
// Уведомление пользователя best-effort и не откатывает выдачу доступа.
func (s *Service) GrantEntitlement(ctx context.Context, userID int64, rail string) error {
	const op = "entitlement.GrantEntitlement"
	log := s.log.With(slog.String("op", op), sl.UserID(userID), slog.String("rail", rail))

	granted, err := s.repo.MarkPaid(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// дубликат уведомления: доступ уже выдан, подтверждение уже уходило
	if !granted {
		log.Info("duplicate payment notification absorbed")
		return nil
	}
	metrics.EntitlementGrants.WithLabelValues(rail).Inc()
	log.Info("user upgraded to VIP")

	lang, err := s.repo.GetUserLanguage(ctx, userID)
	if err != nil {
		log.Warn("failed to resolve user language, using default", sl.Err(err))
		lang = models.LangArabic
	}
	if err := s.notifier.SendText(userID, texts.PaymentConfirmed(lang)); err != nil {
		log.Warn("failed to send payment confirmation", sl.Err(err))
	}
	return nil
}

// ConsumeTrial отмечает израсходованный пробный анализ. Вызывается
// только после фактической доставки анализа пользователю.
func (s *Service) ConsumeTrial(ctx context.Context, userID int64) error {
	const op = "entitlement.ConsumeTrial"

	if err := s.repo.MarkTrialConsumed(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
