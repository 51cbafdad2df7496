package radarbot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/streadway/amqp"

	"github.com/aicryptogpt/crypto-radar-bot/internal/bot"
	"github.com/aicryptogpt/crypto-radar-bot/internal/config"
	"github.com/aicryptogpt/crypto-radar-bot/internal/insight"
	"github.com/aicryptogpt/crypto-radar-bot/internal/marketdata"
	"github.com/aicryptogpt/crypto-radar-bot/internal/migrations"
	"github.com/aicryptogpt/crypto-radar-bot/internal/payments/nowpayments"
	"github.com/aicryptogpt/crypto-radar-bot/internal/rabbitmq"
	analysisservice "github.com/aicryptogpt/crypto-radar-bot/internal/services/analysis"
	deliveryservice "github.com/aicryptogpt/crypto-radar-bot/internal/services/delivery"
	entitlementservice "github.com/aicryptogpt/crypto-radar-bot/internal/services/entitlement"
	radarservice "github.com/aicryptogpt/crypto-radar-bot/internal/services/radar"
	"github.com/aicryptogpt/crypto-radar-bot/internal/session"
	"github.com/aicryptogpt/crypto-radar-bot/internal/storage"
)

const ipnPath = "/webhook/nowpayments"

type App struct {
	server   *http.Server
	logger   *slog.Logger
	cfg      *config.Config
	db       *storage.Storage
	conn     *amqp.Connection
	ch       *amqp.Channel
	bot      *bot.Bot
	radar    *radarservice.Service
	delivery *deliveryservice.Service
}

// textNotifier шлёт служебные уведомления напрямую через Telegram API.
// Отдельный тип разрывает цикл сборки: сервису подписок нужен отправитель
// раньше, чем собран сам бот.
type textNotifier struct {
	api *tgbotapi.BotAPI
}

func (n *textNotifier) SendText(userID int64, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	var sessions session.Store
	if cfg.RedisConnection.Addr != "" {
		sessions, err = session.NewRedisStore(ctx, cfg.RedisConnection, cfg.Broadcast.SessionTTL)
		if err != nil {
			return nil, err
		}
	} else {
		sessions = session.NewMemoryStore(cfg.Broadcast.SessionTTL)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetAlertQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		conn.Close()
		return nil, err
	}

	marketClient := marketdata.NewClient(cfg.MarketData.APIKey, cfg.MarketData.Timeout)
	insightClient := insight.NewClient(cfg.Insight.APIKey, cfg.Insight.Model, cfg.Insight.Timeout)
	invoiceClient := nowpayments.NewClient(
		cfg.Payments.NOWPaymentsAPIKey,
		cfg.WebhookBaseURL+ipnPath,
		"https://t.me/"+cfg.BotUsername,
		cfg.Payments.InvoicePriceUSD,
	)

	entitlementService := entitlementservice.New(db, &textNotifier{api: api}, logger)
	analysisService := analysisservice.New(entitlementService, marketClient, insightClient, sessions, logger)

	tgBot := bot.New(api, db, entitlementService, analysisService, invoiceClient, logger,
		cfg.BotUsername, cfg.ChannelID, cfg.AdminUserID, cfg.Payments.StarsPrice)

	radarService := radarservice.New(db, entitlementService, marketClient, insightClient,
		radarservice.NewQueuePublisher(ch), tgBot, logger)
	deliveryService := deliveryservice.New(tgBot, cfg.Broadcast.FloodDelay, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, tgBot, entitlementService, cfg.Payments.NOWPaymentsIPNSecret)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		cfg:      cfg,
		db:       db,
		conn:     conn,
		ch:       ch,
		bot:      tgBot,
		radar:    radarService,
		delivery: deliveryService,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.bot.RegisterWebhook(a.cfg.WebhookBaseURL); err != nil {
		return err
	}

	queues := rabbitmq.GetAlertQueues()
	for _, q := range queues {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, a.delivery.HandleAlertJob); err != nil {
			a.logger.Error("failed to start alerts consumer", slog.Any("err", err))
			return err
		}
	}

	go a.radar.RunRadarLoop(ctx, a.cfg.Broadcast.RadarInterval)
	go a.radar.RunChannelLoop(ctx, a.cfg.Broadcast.ChannelPostInterval)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if chErr := a.ch.Close(); chErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", chErr))
		}
		if connErr := a.conn.Close(); connErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", connErr))
		}
		a.db.DB.Close()
		return err
	}
}
