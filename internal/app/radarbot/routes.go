// Package radarbot собирает приложение целиком: хранилище, брокер,
// Telegram API, сервисы и HTTP-сервер вебхуков с маршрутами.
package radarbot

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aicryptogpt/crypto-radar-bot/internal/bot"
	"github.com/aicryptogpt/crypto-radar-bot/internal/http/handlers/health"
	"github.com/aicryptogpt/crypto-radar-bot/internal/http/handlers/ipn"
	"github.com/aicryptogpt/crypto-radar-bot/internal/http/handlers/update"
	entitlementservice "github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, tgBot *bot.Bot,
	entitlementService *entitlementservice.Service, ipnSecret string) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	// Telegram шлёт обновления на корень: так зарегистрирован вебхук.
	r.Post("/", update.New(logger, tgBot).ServeHTTP)
	r.Post(ipnPath, ipn.New(logger, entitlementService, ipnSecret).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
}
