// Package models содержит основные структуры данных бота:
// пользователей, сессии анализа, задания на рассылку и статистику.
package models

import "time"

// Языки интерфейса бота. Новому пользователю по умолчанию
// назначается арабский до явного выбора.
const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

// DefaultLang возвращает lang, если это поддерживаемый язык,
// иначе язык по умолчанию.
func DefaultLang(lang string) string {
	if lang == LangEnglish {
		return LangEnglish
	}
	return LangArabic
}

// User представляет зарегистрированного пользователя бота.
// Lang может быть пустым, пока пользователь не выбрал язык.
type User struct {
	ID   int64  `json:"user_id"`
	Lang string `json:"lang"`
}

// Session хранит контекст незавершённого анализа: выбранный символ,
// цену на момент запроса и язык пользователя на момент запроса.
// Живёт только между выбором символа и выбором таймфрейма.
type Session struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Lang      string    `json:"lang"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertJob — задание на отправку одного сообщения рассылки
// конкретному получателю. Публикуется планировщиком в очередь
// и обрабатывается воркером доставки.
type AlertJob struct {
	UserID          int64  `json:"user_id"`
	Lang            string `json:"lang"`
	Text            string `json:"text"`
	WithPaymentKeys bool   `json:"with_payment_keys"`
}

// Stats — агрегированная статистика по базе пользователей для команды /status.
type Stats struct {
	TotalUsers int `json:"total_users"`
	PaidUsers  int `json:"paid_users"`
	TrialUsers int `json:"trial_users"`
}
