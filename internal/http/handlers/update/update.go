// Package update принимает вебхуки Telegram. Обновление подтверждается
// немедленно, а обработка уходит в фоновую горутину: Telegram повторяет
// доставку при медленных ответах, что приводило бы к дублям.
package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aicryptogpt/crypto-radar-bot/internal/bot"
	"github.com/aicryptogpt/crypto-radar-bot/internal/http/response"
	"github.com/aicryptogpt/crypto-radar-bot/internal/lib/sl"
)

// Dispatcher обрабатывает разобранное обновление Telegram.
type Dispatcher interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Handler struct {
	log        *slog.Logger
	dispatcher Dispatcher
}

func New(log *slog.Logger, dispatcher Dispatcher) *Handler {
	return &Handler{
		log:        log,
		dispatcher: dispatcher,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.update"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}
	defer func() { _ = r.Body.Close() }()

	upd, err := bot.ParseUpdate(body)
	if err != nil {
		log.Error("failed to parse update", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to parse update"))
		return
	}

	// Контекст запроса умирает вместе с ответом, поэтому обработка
	// получает собственный.
	go h.dispatcher.HandleUpdate(context.Background(), upd)

	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OK())
}
