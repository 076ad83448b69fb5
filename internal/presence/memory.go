package presence

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps heartbeats for a single server instance.
type MemoryStore struct {
	mu       sync.Mutex
	lastSeen map[uuid.UUID]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lastSeen: make(map[uuid.UUID]time.Time)}
}

func (m *MemoryStore) Touch(_ context.Context, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.lastSeen[userID]; !ok || at.After(prev) {
		m.lastSeen[userID] = at
	}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, userID)
	return nil
}

func (m *MemoryStore) Active(_ context.Context, since time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]uuid.UUID, 0, len(m.lastSeen))
	for id, at := range m.lastSeen {
		if at.Before(since) {
			delete(m.lastSeen, id)
			continue
		}
		users = append(users, id)
	}
	slices.SortFunc(users, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
	return users, nil
}

func (m *MemoryStore) LastSeen(_ context.Context, userID uuid.UUID) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.lastSeen[userID]
	return at, ok, nil
}
