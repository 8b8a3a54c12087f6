package requestlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of entries a MemoryStore keeps when none is given.
const DefaultCapacity = 1000

// MemoryStore is a Store backed by an in-memory circular buffer. The oldest
// entry is evicted once the capacity is reached.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
}

// NewMemoryStore creates a MemoryStore with the given capacity.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultCapacity
	}
	return &MemoryStore{
		entries:    make([]*Entry, 0, min(maxEntries, 64)),
		maxEntries: maxEntries,
	}
}

// Log records an entry, filling in ID, timestamp and protocol when unset.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.Protocol == "" {
		entry.Protocol = ProtocolHTTP
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxEntries {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry)
}

// Get retrieves a log entry by ID.
func (s *MemoryStore) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

// List returns entries oldest first. Limit keeps the most recent matches.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Matches(entry) {
			result = append(result, entry)
		}
	}

	if filter != nil && filter.Limit > 0 && filter.Limit < len(result) {
		result = result[len(result)-filter.Limit:]
	}
	return result
}

// Clear removes all log entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}

// Count returns the number of log entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
