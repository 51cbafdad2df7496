package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
	"github.com/aicryptogpt/crypto-radar-bot/internal/marketdata"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/analysis"
	"github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

const deepLinkPrefix = "analyze_"

// ParseUpdate разбирает тело вебхука в обновление Telegram.
func ParseUpdate(body []byte) (tgbotapi.Update, error) {
	const op = "bot.ParseUpdate"

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return tgbotapi.Update{}, fmt.Errorf("%s: %w", op, err)
	}
	return update, nil
}

// HandleUpdate обрабатывает одно обновление. Ошибки логируются и не
// возвращаются: Telegram уже получил 200-й ответ.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil {
		return
	}

	switch {
	case m.SuccessfulPayment != nil:
		b.handleSuccessfulPayment(ctx, m)
	case m.IsCommand():
		switch m.Command() {
		case "start":
			b.handleStart(ctx, m)
		case "status":
			b.handleStatus(ctx, m)
		case "admin":
			b.handleAdmin(m)
		}
	case m.Text != "":
		b.handleSymbol(ctx, m.From.ID, m.Chat.ID, m.Text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	switch {
	case strings.HasPrefix(cb.Data, callbackLangPrefix):
		b.handleLang(ctx, cb)
	case strings.HasPrefix(cb.Data, callbackTimeframePrefix):
		b.handleTimeframe(ctx, cb)
	case cb.Data == callbackPayCrypto:
		b.handlePayCrypto(ctx, cb)
	case cb.Data == callbackPayStars:
		b.handlePayStars(ctx, cb)
	}
}

// ===== КОМАНДЫ =====

func (b *Bot) handleStart(ctx context.Context, m *tgbotapi.Message) {
	const op = "bot.handleStart"

	log := b.log.With(slog.String("op", op), sl.UserID(m.From.ID))

	if err := b.users.SaveUser(ctx, m.From.ID); err != nil {
		log.Error("failed to save user", sl.Err(err))
		b.reply(m.Chat.ID, texts.ServerBusy(b.lang(ctx, m.From.ID)))
		return
	}

	// Диплинк из поста канала: /start analyze_BTC.
	if payload := m.CommandArguments(); strings.HasPrefix(payload, deepLinkPrefix) {
		b.handleSymbol(ctx, m.From.ID, m.Chat.ID, strings.TrimPrefix(payload, deepLinkPrefix))
		return
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, texts.ChooseLanguage())
	msg.ReplyMarkup = b.languageKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		log.Error("failed to send greeting", sl.Err(err))
	}
}

func (b *Bot) handleStatus(ctx context.Context, m *tgbotapi.Message) {
	const op = "bot.handleStatus"

	if m.From.ID != b.adminID {
		return
	}

	log := b.log.With(slog.String("op", op))

	stats, err := b.users.CountStats(ctx)
	if err != nil {
		log.Error("failed to count stats", sl.Err(err))
		b.reply(m.Chat.ID, texts.ServerBusy(models.LangEnglish))
		return
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, texts.Stats(*stats))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Error("failed to send stats", sl.Err(err))
	}
}

func (b *Bot) handleAdmin(m *tgbotapi.Message) {
	b.reply(m.Chat.ID, texts.AdminContact())
}

// ===== ДВУХШАГОВЫЙ АНАЛИЗ =====

func (b *Bot) handleSymbol(ctx context.Context, userID, chatID int64, text string) {
	const op = "bot.handleSymbol"

	if strings.HasPrefix(text, "/") {
		return
	}

	log := b.log.With(slog.String("op", op), sl.UserID(userID))
	lang := b.lang(ctx, userID)

	status, err := b.api.Send(tgbotapi.NewMessage(chatID, texts.FetchingPrice(lang)))
	if err != nil {
		log.Error("failed to send status message", sl.Err(err))
		return
	}

	sess, err := b.analysis.Lookup(ctx, userID, text, lang)
	switch {
	case errors.Is(err, analysis.ErrNotEntitled):
		b.editWithMarkup(chatID, status.MessageID, texts.TrialEnded(lang), b.paymentKeyboard(lang))
	case errors.Is(err, marketdata.ErrSymbolNotFound):
		edit := tgbotapi.NewEditMessageText(chatID, status.MessageID, texts.SymbolInvalid(lang, text))
		edit.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(edit); err != nil {
			log.Error("failed to edit status message", sl.Err(err))
		}
	case err != nil:
		log.Error("symbol lookup failed", sl.Err(err))
		b.edit(chatID, status.MessageID, texts.ServerBusy(lang))
	default:
		found := texts.SymbolFound(lang, sess.Symbol, sess.Price)
		b.editWithMarkup(chatID, status.MessageID, found, b.timeframeKeyboard(lang))
	}
}

func (b *Bot) handleTimeframe(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	const op = "bot.handleTimeframe"

	log := b.log.With(slog.String("op", op), sl.UserID(cb.From.ID))
	b.answerCallback(cb.ID)

	// Нажатие без живой сессии молча игнорируется: кнопка могла
	// пережить срок действия сессии.
	sess, ok, err := b.analysis.Peek(ctx, cb.From.ID)
	if err != nil {
		log.Error("failed to read session", sl.Err(err))
		return
	}
	if !ok {
		return
	}

	chatID := cb.Message.Chat.ID
	b.edit(chatID, cb.Message.MessageID, texts.Analyzing(sess.Lang))

	timeframe := strings.TrimPrefix(cb.Data, callbackTimeframePrefix)

	result, err := b.analysis.Run(ctx, cb.From.ID, timeframe)
	switch {
	case errors.Is(err, analysis.ErrNoSession):
		return
	case errors.Is(err, analysis.ErrNotEntitled):
		b.editWithMarkup(chatID, cb.Message.MessageID, texts.TrialEnded(sess.Lang), b.paymentKeyboard(sess.Lang))
		return
	case err != nil:
		log.Error("analysis failed", sl.Err(err))
		b.edit(chatID, cb.Message.MessageID, texts.ServerBusy(sess.Lang))
		return
	}

	// проба списывается только после фактической доставки разбора:
	// сорвавшаяся отправка не сжигает единственную попытку
	if err := b.reply(chatID, result.Text); err != nil {
		return
	}

	if result.Trial {
		if err := b.analysis.ConfirmTrialDelivery(ctx, cb.From.ID); err != nil {
			log.Error("failed to mark trial consumed", sl.Err(err))
		}
		msg := tgbotapi.NewMessage(chatID, texts.TrialEnded(result.Lang))
		msg.ReplyMarkup = b.paymentKeyboard(result.Lang)
		if _, err := b.api.Send(msg); err != nil {
			log.Error("failed to send trial notice", sl.Err(err))
		}
	}
}

// ===== ЯЗЫК И ОПЛАТА =====

func (b *Bot) handleLang(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	const op = "bot.handleLang"

	log := b.log.With(slog.String("op", op), sl.UserID(cb.From.ID))
	lang := models.DefaultLang(strings.TrimPrefix(cb.Data, callbackLangPrefix))

	if err := b.users.UpdateUserLanguage(ctx, cb.From.ID, lang); err != nil {
		log.Error("failed to update language", sl.Err(err))
		if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(cb.ID, texts.ServerBusy(lang))); err != nil {
			log.Error("failed to answer callback", sl.Err(err))
		}
		return
	}

	b.answerCallback(cb.ID)

	decision, err := b.entitlements.Authorize(ctx, cb.From.ID)
	if err != nil {
		log.Error("failed to authorize user", sl.Err(err))
		b.edit(cb.Message.Chat.ID, cb.Message.MessageID, texts.ServerBusy(lang))
		return
	}

	switch {
	case decision.Paid:
		b.edit(cb.Message.Chat.ID, cb.Message.MessageID, texts.WelcomeBack(lang))
	case decision.TrialAvailable:
		b.edit(cb.Message.Chat.ID, cb.Message.MessageID, texts.TrialAvailable(lang))
	default:
		b.editWithMarkup(cb.Message.Chat.ID, cb.Message.MessageID, texts.TrialEnded(lang), b.paymentKeyboard(lang))
	}
}

func (b *Bot) handlePayCrypto(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	const op = "bot.handlePayCrypto"

	log := b.log.With(slog.String("op", op), sl.UserID(cb.From.ID))
	b.answerCallback(cb.ID)

	lang := b.lang(ctx, cb.From.ID)
	chatID := cb.Message.Chat.ID
	b.edit(chatID, cb.Message.MessageID, texts.GeneratingPaymentLink(lang))

	invoiceURL, err := b.invoices.CreateInvoice(ctx, cb.From.ID)
	if err != nil {
		log.Error("failed to create invoice", sl.Err(err))
		b.edit(chatID, cb.Message.MessageID, texts.PaymentError(lang))
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(texts.PayNowButton(lang), invoiceURL),
		),
	)
	b.editWithMarkup(chatID, cb.Message.MessageID, texts.PaymentLinkCreated(lang), markup)
}

func (b *Bot) handlePayStars(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	const op = "bot.handlePayStars"

	log := b.log.With(slog.String("op", op), sl.UserID(cb.From.ID))
	b.answerCallback(cb.ID)

	lang := b.lang(ctx, cb.From.ID)

	invoice := tgbotapi.NewInvoice(
		cb.Message.Chat.ID,
		texts.StarsInvoiceTitle(lang),
		texts.StarsInvoiceDescription(lang),
		"stars_pay",
		"", // звёзды не требуют провайдерского токена
		"",
		"XTR",
		[]tgbotapi.LabeledPrice{{Label: texts.StarsInvoiceLabel(lang), Amount: b.starsPrice}},
	)
	if _, err := b.api.Send(invoice); err != nil {
		log.Error("failed to send stars invoice", sl.Err(err))
		b.reply(cb.Message.Chat.ID, texts.PaymentError(lang))
	}
}

func (b *Bot) handlePreCheckout(q *tgbotapi.PreCheckoutQuery) {
	const op = "bot.handlePreCheckout"

	answer := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}
	if _, err := b.api.Request(answer); err != nil {
		b.log.Error("failed to answer pre-checkout", slog.String("op", op), sl.Err(err))
	}
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, m *tgbotapi.Message) {
	const op = "bot.handleSuccessfulPayment"

	log := b.log.With(slog.String("op", op), sl.UserID(m.From.ID))

	if err := b.entitlements.GrantEntitlement(ctx, m.From.ID, entitlement.RailStars); err != nil {
		log.Error("failed to grant entitlement", sl.Err(err))
		b.reply(m.Chat.ID, texts.ServerBusy(b.lang(ctx, m.From.ID)))
		return
	}

	log.Info("stars payment processed")
}

// ===== ВСПОМОГАТЕЛЬНЫЕ =====

// lang возвращает язык пользователя; при недоступности хранилища
// откатывается на язык по умолчанию.
func (b *Bot) lang(ctx context.Context, userID int64) string {
	lang, err := b.users.GetUserLanguage(ctx, userID)
	if err != nil {
		return models.DefaultLang("")
	}
	return lang
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		b.log.Error("failed to send message", sl.Err(err))
	}
	return err
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.log.Error("failed to answer callback", sl.Err(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Error("failed to edit message", sl.Err(err))
	}
}

func (b *Bot) editWithMarkup(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)); err != nil {
		b.log.Error("failed to edit message", sl.Err(err))
	}
}
