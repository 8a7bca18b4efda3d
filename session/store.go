package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/liamcoop/healthrisk/predict"
)

// ResultStore holds the most recent prediction label per session.
// Entries are isolated by session ID; a session never observes another's label.
type ResultStore interface {
	// Get returns the session's label, or found=false when no prediction was made
	Get(ctx context.Context, sessionID string) (label predict.Label, found bool, err error)

	// Set records a label, overwriting any previous one for the session
	Set(ctx context.Context, sessionID string, label predict.Label) error

	// Delete ends the session's result
	Delete(ctx context.Context, sessionID string) error

	// Ping reports whether the backing storage is reachable
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores that can drop expired results in bulk
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Config controls session lifetime
type Config struct {
	// TTL is how long a session's result survives after its last write.
	// Zero keeps results until Delete or process exit.
	TTL time.Duration
}

// DefaultConfig returns sensible defaults for session results
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

type entry struct {
	label     predict.Label
	updatedAt time.Time
}

// InMemoryResultStore keeps session results in process memory.
// Thread-safe for concurrent access from HTTP handlers.
type InMemoryResultStore struct {
	entries map[string]entry
	config  Config
	now     func() time.Time
	mu      sync.RWMutex
}

// NewInMemoryResultStore creates an empty in-memory store
func NewInMemoryResultStore(config Config) *InMemoryResultStore {
	return &InMemoryResultStore{
		entries: make(map[string]entry),
		config:  config,
		now:     time.Now,
	}
}

// Get returns the stored label unless it has expired
func (s *InMemoryResultStore) Get(_ context.Context, sessionID string) (predict.Label, bool, error) {
	if sessionID == "" {
		return "", false, fmt.Errorf("session ID is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || s.expired(e) {
		return "", false, nil
	}
	return e.label, true, nil
}

// Set stores the label for the session
func (s *InMemoryResultStore) Set(_ context.Context, sessionID string, label predict.Label) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if _, err := predict.ParseLabel(string(label)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = entry{label: label, updatedAt: s.now()}
	return nil
}

// Delete removes the session's result; deleting an unknown session is a no-op
func (s *InMemoryResultStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	return nil
}

// Ping always succeeds for the in-memory store
func (s *InMemoryResultStore) Ping(context.Context) error {
	return nil
}

// Sweep removes expired entries and returns how many were dropped
func (s *InMemoryResultStore) Sweep(context.Context) (int64, error) {
	if s.config.TTL <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions, expired ones included
func (s *InMemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryResultStore) expired(e entry) bool {
	return s.config.TTL > 0 && s.now().Sub(e.updatedAt) > s.config.TTL
}
