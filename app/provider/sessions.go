package provider

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionResolved = errors.New("checkout session already resolved")
)

// Session is one open payment sheet. It accepts exactly one result.
type Session struct {
	ID      string
	Options types.CheckoutOptions

	results  chan *entity.CheckoutResult
	resolved bool
}

// Sessions tracks the payment sheets currently shown through the checkout bridge.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{items: make(map[string]*Session)}
}

func (s *Sessions) Open(options types.CheckoutOptions) *Session {
	session := &Session{
		ID:      uuid.NewString(),
		Options: options,
		results: make(chan *entity.CheckoutResult, 1),
	}

	s.mu.Lock()
	s.items[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Sessions) Deliver(id string, result *entity.CheckoutResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.items[id]
	if !ok {
		return ErrSessionNotFound
	}
	if session.resolved {
		return ErrSessionResolved
	}
	session.resolved = true
	session.results <- result
	return nil
}

func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
