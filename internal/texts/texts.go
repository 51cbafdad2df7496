// Package texts содержит все пользовательские строки бота на двух языках.
// Любой текст выбирается по языку пользователя, язык по умолчанию — арабский.
package texts

import (
	"fmt"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

func pick(lang, ar, en string) string {
	if models.DefaultLang(lang) == models.LangEnglish {
		return en
	}
	return ar
}

// Fallback — ответ пользователю, когда LLM-провайдер недоступен.
const Fallback = "..."

// ChooseLanguage — приветствие с выбором языка, двуязычное.
func ChooseLanguage() string {
	return "👋 أهلاً بك، يرجى اختيار لغتك:\nWelcome, please choose your language:"
}

// WelcomeBack — приветствие пользователя с активной подпиской.
func WelcomeBack(lang string) string {
	return pick(lang,
		"✅ أهلاً بك مجدداً! اشتراكك مفعل.\nأرسل رمز العملة للتحليل.",
		"✅ Welcome back! Your subscription is active.\nSend a coin symbol to analyze.")
}

// TrialAvailable — приветствие пользователя с неизрасходованной пробной попыткой.
func TrialAvailable(lang string) string {
	return pick(lang,
		"🎁 لديك تجربة مجانية واحدة! أرسل رمز العملة للتحليل.",
		"🎁 You have one free trial! Send a coin symbol for analysis.")
}

// TrialEnded — отказ в доступе с предложением оплатить.
func TrialEnded(lang string) string {
	return pick(lang,
		"⚠️ انتهت تجربتك المجانية. للوصول الكامل، يرجى الاشتراك مقابل 10 USDT أو 500 ⭐ لمرة واحدة.",
		"⚠️ Your free trial has ended. For full access, please subscribe for a one-time fee of 10 USDT or 500 ⭐.")
}

// ServerBusy — ответ при недоступности хранилища.
func ServerBusy(lang string) string {
	return pick(lang,
		"الخادم مشغول، حاول مرة أخرى...",
		"Server busy, try again...")
}

// FetchingPrice — статусное сообщение на время запроса котировки.
func FetchingPrice(lang string) string {
	return pick(lang, "⏳ جاري جلب السعر...", "⏳ Fetching price...")
}

// SymbolInvalid — ответ на неизвестный тикер.
func SymbolInvalid(lang, symbol string) string {
	return pick(lang,
		fmt.Sprintf("❌ الرمز `%s` غير صحيح. تأكد من كتابة الرمز بشكل صحيح (مثل BTC أو ETH).", symbol),
		fmt.Sprintf("❌ Symbol `%s` is invalid. Please check the ticker (e.g., BTC, ETH).", symbol))
}

// SymbolFound — подтверждение символа с предложением выбрать таймфрейм.
func SymbolFound(lang, symbol string, price float64) string {
	return pick(lang,
		fmt.Sprintf("✅ العملة: %s\n💵 السعر: $%.6f\n⏳ اختر الإطار الزمني للتحليل:", symbol, price),
		fmt.Sprintf("✅ Symbol: %s\n💵 Price: $%.6f\n⏳ Select timeframe for analysis:", symbol, price))
}

// Analyzing — статусное сообщение на время обращения к LLM.
func Analyzing(lang string) string {
	return pick(lang, "🤖 جاري التحليل...", "🤖 Analyzing...")
}

// PaymentConfirmed — подтверждение оплаты по любому каналу.
func PaymentConfirmed(lang string) string {
	return pick(lang,
		"✅ تم تأكيد الدفع بنجاح! شكراً لاشتراكك. يمكنك الآن استخدام البوت بشكل كامل.",
		"✅ Payment confirmed! Thank you for subscribing. You can now use the bot fully.")
}

// GeneratingPaymentLink — статусное сообщение на время выставления инвойса.
func GeneratingPaymentLink(lang string) string {
	return pick(lang,
		"⏳ يتم إنشاء رابط الدفع، يرجى الانتظار...",
		"⏳ Generating payment link, please wait...")
}

// PaymentLinkCreated — сообщение с созданной ссылкой на оплату.
func PaymentLinkCreated(lang string) string {
	return pick(lang,
		"✅ تم إنشاء رابط الدفع.\nلإتمام الاشتراك، ادفع عبر الرابط أدناه.\n\nUSDT (BEP20)",
		"✅ Payment link created.\nTo complete your subscription, pay via the link below.\n\nUSDT (BEP20)")
}

// PaymentError — ошибка при выставлении инвойса.
func PaymentError(lang string) string {
	return pick(lang,
		"❌ حدث خطأ. يرجى المحاولة مرة أخرى لاحقاً.",
		"❌ An error occurred. Please try again later.")
}

// AdminContact — ответ на команду /admin, двуязычный.
func AdminContact() string {
	return "📌 للتواصل مع الدعم، يرجى التواصل مع هذا الحساب:\n@AiCrAdmin\n\n" +
		"📌 For support, contact:\n@AiCrAdmin"
}

// Stats — ответ на команду /status.
func Stats(stats models.Stats) string {
	return fmt.Sprintf("📊 **إحصائيات البوت:**\n"+
		"───────────────────\n"+
		"👥 **إجمالي المستخدمين:** `%d`\n"+
		"💎 **المشتركين (VIP):** `%d`\n"+
		"🎁 **مستخدمي التجربة:** `%d`",
		stats.TotalUsers, stats.PaidUsers, stats.TrialUsers)
}

// ===== КНОПКИ =====

// PayCryptoButton — кнопка оплаты крипто-инвойсом.
func PayCryptoButton(lang string) string {
	return pick(lang,
		"💎 اشترك الآن (10 USDT مدى الحياة)",
		"💎 Subscribe Now (10 USDT Lifetime)")
}

// PayStarsButton — кнопка оплаты Telegram Stars.
func PayStarsButton(lang string) string {
	return pick(lang,
		" اشترك الآن بـ 500 نجمة مدى الحياة⭐",
		"⭐ Subscribe Now with 500 Stars Lifetime")
}

// PayNowButton — кнопка со ссылкой на инвойс.
func PayNowButton(lang string) string {
	return pick(lang, "💳 ادفع الآن", "💳 Pay Now")
}

// TimeframeButtons возвращает подписи кнопок таймфреймов: weekly, daily, 4h.
func TimeframeButtons(lang string) (weekly, daily, fourH string) {
	if models.DefaultLang(lang) == models.LangEnglish {
		return "Weekly", "Daily", "4H"
	}
	return "أسبوعي", "يومي", "4 ساعات"
}

// ===== ИНВОЙС TELEGRAM STARS =====

// StarsInvoiceTitle — заголовок инвойса Stars.
func StarsInvoiceTitle(lang string) string {
	return pick(lang, "اشتراك VIP", "VIP Subscription")
}

// StarsInvoiceDescription — описание инвойса Stars.
func StarsInvoiceDescription(lang string) string {
	return pick(lang,
		"اشترك الآن باستخدام 500 ⭐ للوصول الكامل",
		"Subscribe Now with 500 ⭐ for full access")
}

// StarsInvoiceLabel — подпись позиции инвойса Stars.
func StarsInvoiceLabel(lang string) string {
	return pick(lang,
		"اشتراك البوت بـ 500 نجمة مدى الحياة ⭐",
		"Subscribe Now with 500 ⭐ Lifetime")
}

// ===== РАССЫЛКИ =====

// RadarPrice форматирует цену для рассылки: младшие монеты с полной точностью.
func RadarPrice(price float64) string {
	if price < 1 {
		return fmt.Sprintf("%.8f", price)
	}
	return fmt.Sprintf("%.2f", price)
}

// VIPAlert — персональное сообщение радара для оплаченного пользователя.
func VIPAlert(lang, symbol, priceDisplay, insight string) string {
	return pick(lang,
		fmt.Sprintf("🚨 **VIP BREAKOUT ALERT**\n\n💎 **العملة:** #%s\n💵 **السعر:** `$%s`\n📈 **الرؤية:**\n%s",
			symbol, priceDisplay, insight),
		fmt.Sprintf("🚨 **VIP BREAKOUT ALERT**\n\n💎 **Symbol:** #%s\n💵 **Price:** `$%s`\n📈 **Insight:**\n%s",
			symbol, priceDisplay, insight))
}

// FreeAlert — сообщение радара для бесплатного пользователя: символ скрыт,
// вместо разбора — тизер и призыв оплатить.
func FreeAlert(lang, priceDisplay, hint string) string {
	return pick(lang,
		fmt.Sprintf("📡 **رادار الفرص الذكي**\n"+
			"───────────────────\n"+
			"🔥 **تم رصد انفجار سعري محتمل الآن!**\n\n"+
			"📊 **العملة:** `•••••` 🔒\n"+
			"💰 **السعر الحالي:** `$%s`\n"+
			"📈 **تلميح تقني:**\n_%s_\n\n"+
			"📢 **اشترك الآن لكشف اسم العملة والأهداف!**", priceDisplay, hint),
		fmt.Sprintf("📡 **SMART RADAR ALERT**\n"+
			"───────────────────\n"+
			"🔥 **Potential Breakout Detected!**\n\n"+
			"📊 **Symbol:** `•••••` 🔒\n"+
			"💰 **Price:** `$%s`\n"+
			"📈 **Technical Hint:**\n_%s_\n\n"+
			"📢 **Subscribe VIP to unlock the symbol!**", priceDisplay, hint))
}

// ChannelPrice форматирует цену для канального поста.
func ChannelPrice(price float64) string {
	if price > 1 {
		return fmt.Sprintf("%.4f", price)
	}
	return fmt.Sprintf("%.8f", price)
}

// PowerDesc возвращает словесную оценку силы индикатора в процентах.
func PowerDesc(val float64) string {
	switch {
	case val < 50:
		return "ضعيف ⚠️"
	case val < 60:
		return "متوسط ⚖️"
	case val < 80:
		return "قوي 💪"
	default:
		return "قوي جداً 🔥"
	}
}

// ChannelPost — публичный пост в канал со скрытым направлением и целями.
func ChannelPost(symbol, priceDisplay string, volVal float64, trendVal int) string {
	return fmt.Sprintf("━━━━━━━━━━━━\n"+
		"🚨 **SMART MONEY ALERT**\n"+
		"━━━━━━━━━━━━\n"+
		"⏱️ الفريم: 15m\n"+
		"💰 العملة: `%sUSDT`\n"+
		"💵 السعر: `%s`\n"+
		"━━━━━━━━━━━━\n"+
		"▪️ الحالة: ✅ إغلاق شمعة\n"+
		"▪️ قوة الحجم: %.1f%% (%s)\n"+
		"▪️ قوة الاتجاه: %d%% (%s)\n"+
		"━━━━━━━━━━━━\n"+
		"🔒 الاتجاه والأهداف مخفية\n"+
		"━━━━━━━━━━━━\n"+
		"👁️‍🗨️ لمعرفة الاتجاه + TP/SL\n"+
		"اضغط هنا 👇",
		symbol, priceDisplay, volVal, PowerDesc(volVal), trendVal, PowerDesc(float64(trendVal)))
}

// ChannelPostButton — кнопка перехода из канала в бот.
func ChannelPostButton() string {
	return "🖥 تحليل الاتجاه الآن"
}

// ===== ПРОМПТЫ =====

// AnalysisPrompt — промпт полного технического разбора по таймфрейму.
func AnalysisPrompt(lang, symbol string, price float64, timeframe string) string {
	if models.DefaultLang(lang) == models.LangEnglish {
		return fmt.Sprintf("The current price of %s is $%.6f.\nAnalyze the %s chart using comprehensive indicators:\n"+
			"- Support and Resistance\n- RSI, MACD, MA\n- Bollinger Bands\n- Fibonacci Levels\n- Stochastic Oscillator\n- Volume Analysis\n- Trendlines using Regression\n"+
			"Then provide:\n1. General trend (up/down)\n2. Nearest resistance/support\n3. Three future price targets\n✅ Answer in English only\n❌ Don't explain the project, only chart analysis",
			symbol, price, timeframe)
	}
	return fmt.Sprintf("سعر العملة %s الآن هو %.6f$.\nقم بتحليل التشارت للإطار الزمني %s باستخدام مؤشرات شاملة:\n"+
		"- خطوط الدعم والمقاومة\n- RSI, MACD, MA\n- Bollinger Bands\n- Fibonacci Levels\n- Stochastic Oscillator\n- Volume Analysis\n- Trendlines باستخدام Regression\n"+
		"ثم قدم:\n1. تقييم عام (صعود أم هبوط؟)\n2. أقرب مقاومة ودعم\n3. ثلاثة أهداف مستقبلية (قصير، متوسط، بعيد المدى)\n✅ استخدم العربية فقط\n❌ لا تشرح المشروع، فقط تحليل التشارت",
		symbol, price, timeframe)
}

// VIPInsightPrompt — промпт короткого разбора для VIP-рассылки.
func VIPInsightPrompt(lang, symbol, priceDisplay string) string {
	language := "Arabic"
	if models.DefaultLang(lang) == models.LangEnglish {
		language = "English"
	}
	return fmt.Sprintf("Give a very short 2-line technical breakout insight for #%s at $%s. Answer strictly in %s.",
		symbol, priceDisplay, language)
}

// FreeHintPrompt — промпт тизера без названия монеты для бесплатной рассылки.
func FreeHintPrompt(lang, priceDisplay string) string {
	language := "Arabic"
	if models.DefaultLang(lang) == models.LangEnglish {
		language = "English"
	}
	return fmt.Sprintf("Write a 1-line technical breakout hint for a coin at $%s. DO NOT mention the coin name. Answer strictly in %s.",
		priceDisplay, language)
}
