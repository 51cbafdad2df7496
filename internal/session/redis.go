package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aicryptogpt/crypto-radar-bot/internal/config"
	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// RedisStore — хранилище сессий в redis, переживающее рестарт процесса.
// Включается, когда в конфиге задан адрес redis.
type RedisStore struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisStore подключается к redis и возвращает хранилище сессий.
func NewRedisStore(ctx context.Context, cfg config.RedisConnection, ttl time.Duration) (*RedisStore, error) {
	const op = "session.NewRedisStore"

	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStore{db: db, ttl: ttl}, nil
}

func sessionKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

// Put сохраняет сессию пользователя, вытесняя предыдущую.
func (r *RedisStore) Put(ctx context.Context, userID int64, s models.Session) error {
	const op = "session.RedisStore.Put"

	jsonData, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.db.Set(ctx, sessionKey(userID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get возвращает актуальную сессию пользователя.
func (r *RedisStore) Get(ctx context.Context, userID int64) (models.Session, bool, error) {
	const op = "session.RedisStore.Get"

	val, err := r.db.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}

	var s models.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return models.Session{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if expired(s, r.ttl) {
		return models.Session{}, false, nil
	}
	return s, true, nil
}

// Evict удаляет сессию пользователя.
func (r *RedisStore) Evict(ctx context.Context, userID int64) error {
	const op = "session.RedisStore.Evict"

	if err := r.db.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает подключение к redis.
func (r *RedisStore) Close() error {
	return r.db.Close()
}
