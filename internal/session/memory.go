package session

import (
	"context"
	"sync"
	"time"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// MemoryStore — хранилище сессий в памяти процесса. Содержимое теряется
// при рестарте: пользователю достаточно заново отправить символ.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]models.Session
	ttl      time.Duration
}

// NewMemoryStore создаёт хранилище в памяти. ttl <= 0 отключает истечение сессий.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]models.Session),
		ttl:      ttl,
	}
}

// Put сохраняет сессию пользователя, вытесняя предыдущую.
func (m *MemoryStore) Put(_ context.Context, userID int64, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return nil
}

// Get возвращает актуальную сессию пользователя.
func (m *MemoryStore) Get(_ context.Context, userID int64) (models.Session, bool, error) {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if !ok || expired(s, m.ttl) {
		return models.Session{}, false, nil
	}
	return s, true, nil
}

// Evict удаляет сессию пользователя.
func (m *MemoryStore) Evict(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
