package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aicryptogpt/crypto-radar-bot/internal/texts"
)

// Теги колбэков, по которым диспетчеризуются нажатия кнопок.
const (
	callbackLangPrefix      = "lang_"
	callbackTimeframePrefix = "tf_"
	callbackPayCrypto       = "pay_crypto"
	callbackPayStars        = "pay_stars"
)

func (b *Bot) languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇸🇦 العربية", callbackLangPrefix+"ar"),
			tgbotapi.NewInlineKeyboardButtonData("🇺🇸 English", callbackLangPrefix+"en"),
		),
	)
}

func (b *Bot) paymentKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.PayCryptoButton(lang), callbackPayCrypto),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.PayStarsButton(lang), callbackPayStars),
		),
	)
}

func (b *Bot) timeframeKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	weekly, daily, fourH := texts.TimeframeButtons(lang)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(weekly, callbackTimeframePrefix+"weekly"),
			tgbotapi.NewInlineKeyboardButtonData(daily, callbackTimeframePrefix+"daily"),
			tgbotapi.NewInlineKeyboardButtonData(fourH, callbackTimeframePrefix+"4h"),
		),
	)
}
