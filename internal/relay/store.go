// Package relay is the HTTP server devices post readings to and the
// dashboard polls. It keeps only the latest entry per device, in memory.
package relay

import (
	"sort"
	"sync"
	"time"
)

// DefaultDeviceID is used when a posted body carries no device_id.
const DefaultDeviceID = "smart_tent_001"

// timestampLayout is local wall time without a zone, microsecond precision.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Entry is what GET /api/data/{id} returns.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry), now: time.Now}
}

// Put replaces the latest entry for the body's device and returns its id.
func (s *Store) Put(body map[string]any) string {
	id := deviceID(body)
	s.mu.Lock()
	s.entries[id] = Entry{
		Timestamp: s.now().Format(timestampLayout),
		Data:      body,
	}
	s.mu.Unlock()
	return id
}

func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// All returns a copy of every entry keyed by device id.
func (s *Store) All() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Devices returns the known device ids, sorted.
func (s *Store) Devices() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func deviceID(body map[string]any) string {
	if id, ok := body["device_id"].(string); ok && id != "" {
		return id
	}
	return DefaultDeviceID
}
