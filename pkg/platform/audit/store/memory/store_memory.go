package memory

import (
	"context"
	"sort"
	"sync"

	audit "biogate/pkg/platform/audit"
)

// DefaultCapacity bounds the number of retained events.
const DefaultCapacity = 10000

// InMemoryStore is an audit log held in process memory. Once capacity events
// are held, each append overwrites the oldest one.
type InMemoryStore struct {
	mu       sync.RWMutex
	ring     []audit.Event
	next     int
	full     bool
	capacity int
}

type Option func(*InMemoryStore)

// WithCapacity sets how many events are retained. Non-positive values keep the default.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring = nil
	s.next = 0
	s.full = false
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.full {
		s.ring = append(s.ring, event)
		if len(s.ring) == s.capacity {
			s.full = true
		}
		return nil
	}
	s.ring[s.next] = event
	s.next = (s.next + 1) % s.capacity
	return nil
}

// Len reports the number of retained events.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ring)
}

// ordered returns retained events oldest first. Callers hold the read lock.
func (s *InMemoryStore) ordered() []audit.Event {
	out := make([]audit.Event, 0, len(s.ring))
	if s.full {
		out = append(out, s.ring[s.next:]...)
		return append(out, s.ring[:s.next]...)
	}
	return append(out, s.ring...)
}

// ListBySubject returns the events recorded for one registration id in append order.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.ordered() {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecent returns up to limit events of the given action, most recent first.
// An empty action matches every event; a non-positive limit returns all matches.
func (s *InMemoryStore) ListRecent(_ context.Context, action string, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	matched := make([]audit.Event, 0, len(s.ring))
	for _, e := range s.ordered() {
		if action == "" || e.Action == action {
			matched = append(matched, e)
		}
	}
	s.mu.RUnlock()

	// Newest append first so events sharing a timestamp stay in reverse append order.
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
