package learning

import (
	"sync"

	"go.uber.org/zap"
)

// Listener observes every applied transition. Listeners run synchronously
// inside Dispatch while the store is locked; they must not block or call
// back into the Store.
type Listener func(prev, next State, a Action)

// Store owns the session state and serializes transitions.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	log       *zap.Logger
}

// NewStore creates a Store holding Initial().
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:     Initial(),
		listeners: map[int]Listener{},
		log:       log,
	}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a and notifies listeners.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = Reduce(prev, a)
	s.log.Debug("dispatch", zap.String("action", string(a.Type())))

	for _, l := range s.listeners {
		l(prev, s.state, a)
	}
}

// Subscribe registers l and returns a func that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
