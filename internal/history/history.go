// Package history records question/answer exchanges per session. Two
// implementations are provided: an in-process store for single-shot CLI use
// and a SQLite store that survives restarts.
package history

import (
	"context"
	"sync"
	"time"
)

// Entry is one recorded exchange.
type Entry struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`
	// SessionID groups exchanges into a conversation.
	SessionID string `json:"session_id"`
	// Question is the user's question as asked.
	Question string `json:"question"`
	// Answer is the final answer text shown to the user.
	Answer string `json:"answer"`
	// Status is the outcome class of the answer (success, no_results, error).
	Status string `json:"status"`
	// CreatedAt is when the exchange was recorded, in UTC.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists conversation history.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records an exchange. A zero CreatedAt is stamped with now.
	Append(ctx context.Context, e Entry) error
	// BySession returns a session's exchanges in insertion order.
	BySession(ctx context.Context, sessionID string) ([]Entry, error)
	// Clear removes a session's exchanges. Other sessions are untouched.
	Clear(ctx context.Context, sessionID string) error
	// Close releases any resources held by the store.
	Close() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Append records an exchange.
func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID
	s.nextID++
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, e)
	return nil
}

// BySession returns a session's exchanges in insertion order.
func (s *MemoryStore) BySession(ctx context.Context, sessionID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Clear removes a session's exchanges.
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.SessionID != sessionID {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error { return nil }
