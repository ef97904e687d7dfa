package session

import (
	"context"
	"sync"
)

type memoryManager struct {
	// mu guards only the map itself; stored sessions are never mutated in
	// place, Update writes back a fresh copy. That keeps Get race-free while
	// another user's closure is running.
	mu       sync.RWMutex
	sessions map[int64]*Session

	// lockMu guards userMu; the per-customer mutex serializes Update/Clear
	// for one customer without stalling anyone else.
	lockMu sync.Mutex
	userMu map[int64]*sync.Mutex
}

// NewMemoryManager constructs an in-memory Manager for tests, development and
// single-instance deployments without Redis.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		userMu:   make(map[int64]*sync.Mutex),
	}
}

func (m *memoryManager) lockFor(customerID int64) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.userMu[customerID]
	if !ok {
		l = &sync.Mutex{}
		m.userMu[customerID] = l
	}
	return l
}

func (m *memoryManager) Get(_ context.Context, customerID int64) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[customerID]
	m.mu.RUnlock()
	if ok {
		return s.Clone(), nil
	}
	return New(customerID), nil
}

func (m *memoryManager) Update(_ context.Context, customerID int64, fn func(*Session)) error {
	l := m.lockFor(customerID)
	l.Lock()
	defer l.Unlock()

	m.mu.RLock()
	s, ok := m.sessions[customerID]
	m.mu.RUnlock()
	if !ok {
		s = New(customerID)
	}

	cp := s.Clone()
	fn(cp)

	m.mu.Lock()
	m.sessions[customerID] = cp
	m.mu.Unlock()
	return nil
}

func (m *memoryManager) Clear(_ context.Context, customerID int64) error {
	l := m.lockFor(customerID)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	delete(m.sessions, customerID)
	m.mu.Unlock()
	return nil
}

func (m *memoryManager) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
