package dialog

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store хранит не более одной сессии на пользователя.
// Get возвращает nil, nil, если сессии нет или она простаивала дольше idle-таймаута.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Reset(ctx context.Context, userID int64) error
	Expire(ctx context.Context, idle time.Duration) (int, error)
}

type memEntry struct {
	data    []byte
	touched time.Time
}

// MemoryStore — хранилище в памяти процесса. Сессии лежат в JSON,
// так что вызывающий никогда не делит указатели с хранилищем.
type MemoryStore struct {
	mu    sync.Mutex
	items map[int64]memEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: make(map[int64]memEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[userID]
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().Sub(e.touched) > m.ttl {
		delete(m.items, userID)
		return nil, nil
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[s.Requester.UserID] = memEntry{data: data, touched: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Reset(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.items, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Expire(_ context.Context, idle time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle)
	n := 0
	for id, e := range m.items {
		if e.touched.Before(cutoff) {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
