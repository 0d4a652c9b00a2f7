package session

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrInvalidSession = errors.New("session id is empty")

// Store keeps per-session conversation histories. Histories are append-only:
// a session is created empty on first reference and grows monotonically.
// Implementations must be safe for concurrent use across sessions; turns for
// the same session are expected to be serialized by the caller, since
// out-of-order appends would corrupt conversational context.
type Store interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
}

// MemoryStore is the default in-process Store. The registry itself is guarded
// by a mutex; each history is only mutated under it.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message)}
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msgs...)
	return nil
}
