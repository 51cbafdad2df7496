// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразное формирование структурированных полей лога
// для ошибок и идентификаторов пользователей Telegram.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// UserID возвращает slog.Attr с ключом "user_id" для идентификатора
// пользователя Telegram.
func UserID(id int64) slog.Attr {
	return slog.Attr{
		Key:   "user_id",
		Value: slog.Int64Value(id),
	}
}
