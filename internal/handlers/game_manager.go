package handlers

import "sync"

// GameManager serializes work on a single game. Requests for different games
// proceed in parallel; requests for the same game run one at a time.
type GameManager struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func NewGameManager() *GameManager {
	return &GameManager{locks: map[string]*gameLock{}}
}

// Lock blocks until the caller holds gameID and returns the release func.
func (m *GameManager) Lock(gameID string) func() {
	m.mu.Lock()
	l := m.locks[gameID]
	if l == nil {
		l = &gameLock{}
		m.locks[gameID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, gameID)
		}
		m.mu.Unlock()
	}
}

// Active reports how many games currently have a holder or waiter.
func (m *GameManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
