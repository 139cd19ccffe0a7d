package recommend

import (
	"context"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"sync"
	"time"
)

// keyedMutex serialises calls that share a session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

type memoryEntry struct {
	session   *domain.Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. A zero ttl never
// expires entries.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemorySessionStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		return nil, nil
	}
	return entry.session.Clone(), nil
}

func (m *MemorySessionStore) SaveSession(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[session.ID] = memoryEntry{
		session:   session.Clone(),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemorySessionStore) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (m *MemorySessionStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemorySessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug("sessions_swept", "removed", n)
			}
		}
	}
}

const maxRecommendedPerSession = 2000

// capRecommended keeps the newest maxRecommendedPerSession ids so a long
// lived session cannot grow without bound.
func capRecommended(s *domain.Session) {
	if len(s.RecommendedIDs) <= maxRecommendedPerSession {
		return
	}
	drop := len(s.RecommendedIDs) - maxRecommendedPerSession
	s.RecommendedIDs = append([]uint64(nil), s.RecommendedIDs[drop:]...)
}
