// Package session хранит эфемерный контекст незавершённого анализа:
// между выбором символа и выбором таймфрейма. На пользователя ровно один
// слот, новая запись молча вытесняет предыдущую (last-write-wins).
package session

import (
	"context"
	"time"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// Store описывает хранилище сессий анализа.
//
// Get возвращает ok=false, если сессии нет или истёк её TTL —
// для вызывающего кода эти случаи неразличимы.
type Store interface {
	Put(ctx context.Context, userID int64, s models.Session) error
	Get(ctx context.Context, userID int64) (models.Session, bool, error)
	Evict(ctx context.Context, userID int64) error
}

func expired(s models.Session, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(s.CreatedAt) > ttl
}
