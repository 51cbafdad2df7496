// Package bot реализует Telegram-слой: разбор входящих обновлений,
// команды и колбэки, клавиатуры и исходящие отправки. Бизнес-логика
// живёт в сервисах, сюда приходит только транспорт.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/analysis"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

// UserRepository описывает необходимую часть хранилища пользователей.
type UserRepository interface {
	SaveUser(ctx context.Context, userID int64) error
	UpdateUserLanguage(ctx context.Context, userID int64, lang string) error
	GetUserLanguage(ctx context.Context, userID int64) (string, error)
	CountStats(ctx context.Context) (*models.Stats, error)
}

// EntitlementService — контроль доступа и выдача подписки.
type EntitlementService interface {
	Authorize(ctx context.Context, userID int64) (entitlement.Decision, error)
	GrantEntitlement(ctx context.Context, userID int64, rail string) error
}

// AnalysisService — двухшаговый сценарий анализа.
type AnalysisService interface {
	Lookup(ctx context.Context, userID int64, symbol, lang string) (models.Session, error)
	Peek(ctx context.Context, userID int64) (models.Session, bool, error)
	Run(ctx context.Context, userID int64, timeframe string) (analysis.Result, error)
	ConfirmTrialDelivery(ctx context.Context, userID int64) error
}

// InvoiceCreator выставляет крипто-инвойс на подписку.
type InvoiceCreator interface {
	CreateInvoice(ctx context.Context, userID int64) (string, error)
}

// Bot связывает Telegram API с сервисами.
type Bot struct {
	api          *tgbotapi.BotAPI
	users        UserRepository
	entitlements EntitlementService
	analysis     AnalysisService
	invoices     InvoiceCreator
	log          *slog.Logger

	username   string
	channelID  string
	adminID    int64
	starsPrice int
}

// New создает новый Bot поверх авторизованного Telegram API.
func New(api *tgbotapi.BotAPI, users UserRepository, entitlements EntitlementService,
	analysisService AnalysisService, invoices InvoiceCreator, log *slog.Logger,
	username, channelID string, adminID int64, starsPrice int) *Bot {
	return &Bot{
		api:          api,
		users:        users,
		entitlements: entitlements,
		analysis:     analysisService,
		invoices:     invoices,
		log:          log,
		username:     username,
		channelID:    channelID,
		adminID:      adminID,
		starsPrice:   starsPrice,
	}
}

// RegisterWebhook регистрирует URL вебхука у Telegram.
func (b *Bot) RegisterWebhook(baseURL string) error {
	const op = "bot.RegisterWebhook"

	wh, err := tgbotapi.NewWebhook(baseURL + "/")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ===== ИСХОДЯЩИЕ ОТПРАВКИ =====

// SendText отправляет пользователю обычное текстовое сообщение.
// Используется и как best-effort уведомитель сервиса entitlement.
func (b *Bot) SendText(userID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

// SendAlert отправляет получателю сообщение рассылки: бесплатный
// вариант уходит с клавиатурой оплаты.
func (b *Bot) SendAlert(job models.AlertJob) error {
	msg := tgbotapi.NewMessage(job.UserID, job.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if job.WithPaymentKeys {
		msg.ReplyMarkup = b.paymentKeyboard(job.Lang)
	}
	_, err := b.api.Send(msg)
	return err
}

// SendChannelPost публикует пост в канал с кнопкой-ссылкой в бот.
func (b *Bot) SendChannelPost(text, symbol string) error {
	msg := tgbotapi.NewMessageToChannel(b.channelID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(
				texts.ChannelPostButton(),
				fmt.Sprintf("https://t.me/%s?start=analyze_%s", b.username, symbol),
			),
		),
	)
	_, err := b.api.Send(msg)
	return err
}
