// Package analysis реализует двухшаговый сценарий платной функции:
// выбор символа с запросом котировки, затем выбор таймфрейма с генерацией
// технического разбора. Контекст между шагами живёт в сессии пользователя.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/metrics"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	"github.com/aicryptogpt/crypto-radar-bot/internal/session"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

// ErrNotEntitled возвращается, когда у пользователя нет ни оплаты, ни пробы.
var ErrNotEntitled = errors.New("user not entitled")

// ErrNoSession возвращается на выбор таймфрейма без предшествующего
// выбора символа. Для пользователя это no-op.
var ErrNoSession = errors.New("no active session")

// MarketData запрашивает котировку инструмента.
type MarketData interface {
	QuoteLatest(ctx context.Context, symbol string) (float64, error)
}

// Insight генерирует текст разбора.
type Insight interface {
	Ask(ctx context.Context, prompt, lang string) (string, error)
}

// Gate проверяет право доступа и фиксирует израсходованную пробу.
type Gate interface {
	Authorize(ctx context.Context, userID int64) (entitlement.Decision, error)
	ConsumeTrial(ctx context.Context, userID int64) error
}

// Result — сгенерированный разбор, готовый к отправке пользователю.
type Result struct {
	Text string
	Lang string
	// Trial выставлен, когда разбор выполнен на пробном тарифе: после
	// успешной доставки вызывающий фиксирует пробу через
	// ConfirmTrialDelivery и показывает предложение оплатить.
	Trial bool
}

// Service — сервис сценария анализа.
type Service struct {
	gate     Gate
	market   MarketData
	insight  Insight
	sessions session.Store
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(gate Gate, market MarketData, insight Insight, sessions session.Store, log *slog.Logger) *Service {
	return &Service{
		gate:     gate,
		market:   market,
		insight:  insight,
		sessions: sessions,
		log:      log,
	}
}

// Lookup проверяет доступ, запрашивает котировку символа и открывает
// сессию пользователя. Новая сессия молча вытесняет предыдущую.
func (s *Service) Lookup(ctx context.Context, userID int64, symbol, lang string) (models.Session, error) {
	const op = "analysis.Lookup"

	decision, err := s.gate.Authorize(ctx, userID)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !decision.Allowed {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrNotEntitled)
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, err := s.market.QuoteLatest(ctx, symbol)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	sess := models.Session{
		Symbol:    symbol,
		Price:     price,
		Lang:      lang,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Put(ctx, userID, sess); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Peek возвращает открытую сессию пользователя, не изменяя её.
// Транспортному слою это нужно, чтобы молча проигнорировать выбор
// таймфрейма без предшествующего выбора символа.
func (s *Service) Peek(ctx context.Context, userID int64) (models.Session, bool, error) {
	const op = "analysis.Peek"

	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return sess, ok, nil
}

// Run выполняет разбор по выбранному таймфрейму на основе открытой сессии.
// Отсутствующая или истёкшая сессия — ErrNoSession. Ошибка LLM-провайдера
// не доходит до пользователя как ошибка: отдаётся заглушка, и пробная
// попытка в этом случае не списывается. Сам Run пробу тоже не списывает:
// она фиксируется через ConfirmTrialDelivery только после того, как
// вызывающий фактически доставил текст пользователю.
func (s *Service) Run(ctx context.Context, userID int64, timeframe string) (Result, error) {
	const op = "analysis.Run"
	log := s.log.With(slog.String("op", op), sl.UserID(userID))

	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return Result{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	decision, err := s.gate.Authorize(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if !decision.Allowed {
		return Result{Lang: sess.Lang}, fmt.Errorf("%s: %w", op, ErrNotEntitled)
	}

	prompt := texts.AnalysisPrompt(sess.Lang, sess.Symbol, sess.Price, timeframe)
	text, err := s.insight.Ask(ctx, prompt, sess.Lang)
	delivered := err == nil
	if err != nil {
		log.Error("insight provider failed", sl.Err(err))
		text = texts.Fallback
	}

	result := Result{Text: text, Lang: sess.Lang}
	if delivered {
		tier := "trial"
		if decision.Paid {
			tier = "paid"
		}
		metrics.AnalysesServed.WithLabelValues(tier).Inc()
		result.Trial = !decision.Paid
	}
	return result, nil
}

// ConfirmTrialDelivery фиксирует израсходованную пробу после того, как
// пробный разбор успешно доставлен. При неудачной доставке не вызывается:
// единственная проба пользователя не сгорает впустую.
func (s *Service) ConfirmTrialDelivery(ctx context.Context, userID int64) error {
	const op = "analysis.ConfirmTrialDelivery"

	if err := s.gate.ConsumeTrial(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
