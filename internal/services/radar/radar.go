// Package radar содержит планировщик периодических рассылок: персональный
// радар по всей базе пользователей и публичные посты в канал. Каждый цикл
// изолирован: любая его ошибка логируется и не останавливает следующие циклы.
package radar

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/marketdata"
	"github.com/aicryptogpt/crypto-radar-bot/internal/metrics"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

const (
	radarListingsLimit   = 50
	channelListingsLimit = 100
)

// Repository возвращает список получателей рассылки.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Gate выбирает вариант контента для получателя.
type Gate interface {
	Authorize(ctx context.Context, userID int64) (entitlement.Decision, error)
}

// MarketData возвращает листинг инструментов.
type MarketData interface {
	ListingsLatest(ctx context.Context, limit int) ([]marketdata.Listing, error)
}

// Insight генерирует контент рассылки.
type Insight interface {
	Ask(ctx context.Context, prompt, lang string) (string, error)
}

// Publisher публикует задание рассылки в очередь доставки.
type Publisher interface {
	Publish(job models.AlertJob) error
}

// ChannelSender публикует пост в публичный канал.
type ChannelSender interface {
	SendChannelPost(text, symbol string) error
}

// Service — планировщик рассылок.
type Service struct {
	repo      Repository
	gate      Gate
	market    MarketData
	insight   Insight
	publisher Publisher
	channel   ChannelSender
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, gate Gate, market MarketData, insight Insight,
	publisher Publisher, channel ChannelSender, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		gate:      gate,
		market:    market,
		insight:   insight,
		publisher: publisher,
		channel:   channel,
		log:       log,
	}
}

// RunRadarLoop крутит цикл персонального радара с заданным интервалом,
// пока не отменён контекст.
func (s *Service) RunRadarLoop(ctx context.Context, interval time.Duration) {
	s.runRadarCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runRadarCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// tierContent — контент одного цикла, сгенерированный по разу
// на каждую пару (тариф, язык) независимо от числа получателей.
type tierContent struct {
	vipAR, vipEN   string
	hintAR, hintEN string
}

func (c tierContent) vip(lang string) string {
	if models.DefaultLang(lang) == models.LangEnglish {
		return c.vipEN
	}
	return c.vipAR
}

func (c tierContent) hint(lang string) string {
	if models.DefaultLang(lang) == models.LangEnglish {
		return c.hintEN
	}
	return c.hintAR
}

func (s *Service) generate(ctx context.Context, symbol, priceDisplay string) tierContent {
	ask := func(prompt, lang string) string {
		answer, err := s.insight.Ask(ctx, prompt, lang)
		if err != nil {
			s.log.Error("insight generation failed", sl.Err(err))
			return texts.Fallback
		}
		return answer
	}
	return tierContent{
		vipAR:  ask(texts.VIPInsightPrompt(models.LangArabic, symbol, priceDisplay), models.LangArabic),
		vipEN:  ask(texts.VIPInsightPrompt(models.LangEnglish, symbol, priceDisplay), models.LangEnglish),
		hintAR: ask(texts.FreeHintPrompt(models.LangArabic, priceDisplay), models.LangArabic),
		hintEN: ask(texts.FreeHintPrompt(models.LangEnglish, priceDisplay), models.LangEnglish),
	}
}

func (s *Service) runRadarCycle(ctx context.Context) {
	const op = "radar.runRadarCycle"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", uuid.NewString()))
	log.Info("starting radar cycle")

	listings, err := s.market.ListingsLatest(ctx, radarListingsLimit)
	if err != nil {
		log.Error("failed to fetch listings, skipping cycle", sl.Err(err))
		return
	}
	coin := listings[rand.Intn(len(listings))]
	priceDisplay := texts.RadarPrice(coin.Price)
	log = log.With(slog.String("symbol", coin.Symbol))

	content := s.generate(ctx, coin.Symbol, priceDisplay)

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users, skipping cycle", sl.Err(err))
		return
	}

	published := 0
	for _, user := range users {
		decision, err := s.gate.Authorize(ctx, user.ID)
		if err != nil {
			// при недоступном хранилище получатель пропускается,
			// а не понижается до бесплатного варианта
			log.Error("failed to authorize recipient, skipping", sl.UserID(user.ID), sl.Err(err))
			continue
		}

		job := models.AlertJob{UserID: user.ID, Lang: user.Lang}
		if decision.Paid {
			job.Text = texts.VIPAlert(user.Lang, coin.Symbol, priceDisplay, content.vip(user.Lang))
		} else {
			job.Text = texts.FreeAlert(user.Lang, priceDisplay, content.hint(user.Lang))
			job.WithPaymentKeys = true
		}

		if err := s.publisher.Publish(job); err != nil {
			log.Error("failed to publish alert job", sl.UserID(user.ID), sl.Err(err))
			continue
		}
		metrics.AlertsPublished.Inc()
		published++
	}
	log.Info("radar cycle finished", slog.Int("recipients", len(users)), slog.Int("published", published))
}

// RunChannelLoop крутит цикл публичных постов в канал с заданным
// интервалом, пока не отменён контекст.
func (s *Service) RunChannelLoop(ctx context.Context, interval time.Duration) {
	s.runChannelCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runChannelCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) runChannelCycle(ctx context.Context) {
	const op = "radar.runChannelCycle"
	log := s.log.With(slog.String("op", op), slog.String("cycle_id", uuid.NewString()))
	log.Info("starting channel post cycle")

	listings, err := s.market.ListingsLatest(ctx, channelListingsLimit)
	if err != nil {
		log.Error("failed to fetch listings, skipping cycle", sl.Err(err))
		return
	}
	coin := listings[rand.Intn(len(listings))]

	// индикаторные проценты синтетические: пост дразнит скрытым
	// направлением, реальный разбор доступен только в боте
	volVal := 40 + rand.Float64()*110
	volVal = float64(int(volVal*10)) / 10
	trendVal := 40 + rand.Intn(59)

	text := texts.ChannelPost(coin.Symbol, texts.ChannelPrice(coin.Price), volVal, trendVal)
	if err := s.channel.SendChannelPost(text, coin.Symbol); err != nil {
		log.Error("failed to send channel post", sl.Err(err))
		return
	}
	log.Info("channel post published", slog.String("symbol", coin.Symbol))
}
