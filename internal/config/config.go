// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
// Все настройки читаются из переменных окружения, локально — из файла .env.
package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env string `env:"ENV" env-default:"local"`

	TelegramToken  string `env:"BOT_TOKEN" env-required:"true"`
	WebhookBaseURL string `env:"WEBHOOK_URL" env-required:"true"`
	BotUsername    string `env:"BOT_USERNAME" env-required:"true"`
	ChannelID      string `env:"CHANNEL_ID" env-default:"@AiCryptoGPT"`
	AdminUserID    int64  `env:"ADMIN_USER_ID" env-default:"6172153716"`

	StorageConnectionString string `env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string `env:"MIGRATIONS_PATH" env-default:"./migrations"`

	RedisConnection RedisConnection
	RabbitMQ        RabbitMQ

	MarketData MarketData
	Insight    Insight
	Payments   Payments
	Broadcast  Broadcast

	HTTPServer HTTPServer
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	Address     string        `env:"LISTEN_ADDRESS" env-default:"0.0.0.0:10000"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"60s"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"120s"`
}

// RedisConnection структура для настройки подключения к redis.
// Addr пустой — сессии хранятся в памяти процесса.
type RedisConnection struct {
	Addr        string        `env:"REDIS_ADDRESS"`
	Password    string        `env:"REDIS_PASSWORD"`
	User        string        `env:"REDIS_USER"`
	DB          int           `env:"REDIS_DB" env-default:"0"`
	MaxRetries  int           `env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ структура для настройки подключения к брокеру рассылок.
type RabbitMQ struct {
	URL        string        `env:"RABBITMQ_URL" env-required:"true"`
	MaxRetries int           `env:"RABBITMQ_MAX_RETRIES" env-default:"10"`
	RetryDelay time.Duration `env:"RABBITMQ_RETRY_DELAY" env-default:"3s"`
}

// MarketData настройки клиента CoinMarketCap.
type MarketData struct {
	APIKey  string        `env:"CMC_API_KEY" env-required:"true"`
	Timeout time.Duration `env:"CMC_TIMEOUT" env-default:"10s"`
}

// Insight настройки LLM-провайдера (Groq, OpenAI-совместимый API).
type Insight struct {
	APIKey  string        `env:"GROQ_API_KEY" env-required:"true"`
	Model   string        `env:"GROQ_MODEL" env-default:"meta-llama/llama-4-maverick-17b-128e-instruct"`
	Timeout time.Duration `env:"GROQ_TIMEOUT" env-default:"45s"`
}

// Payments настройки двух платёжных каналов: крипто-инвойсы NOWPayments
// и Telegram Stars.
type Payments struct {
	NOWPaymentsAPIKey    string `env:"NOWPAYMENTS_API_KEY" env-required:"true"`
	NOWPaymentsIPNSecret string `env:"NOWPAYMENTS_IPN_SECRET"`
	InvoicePriceUSD      int    `env:"INVOICE_PRICE_USD" env-default:"10"`
	StarsPrice           int    `env:"STARS_PRICE" env-default:"500"`
}

// Broadcast настройки периодических рассылок.
type Broadcast struct {
	RadarInterval       time.Duration `env:"RADAR_INTERVAL" env-default:"23h20m"`
	ChannelPostInterval time.Duration `env:"CHANNEL_POST_INTERVAL" env-default:"6h"`
	FloodDelay          time.Duration `env:"FLOOD_DELAY" env-default:"50ms"`
	SessionTTL          time.Duration `env:"SESSION_TTL" env-default:"1h"`
}

// MustLoad загружает конфиг из окружения и завершает процесс,
// если обязательные значения отсутствуют.
func MustLoad() *Config {
	// .env опционален, в продакшене окружение задаётся платформой
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
