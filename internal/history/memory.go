package history

import (
	"context"
	"sync"

	"github.com/sozercan/upi-search/apimodels"
)

// Memory keeps the last maxEntries entries in a ring buffer.
type Memory struct {
	mu      sync.RWMutex
	entries []apimodels.HistoryEntry
	next    int
	full    bool
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Memory{entries: make([]apimodels.HistoryEntry, maxEntries)}
}

func (m *Memory) Add(_ context.Context, query string, resp *apimodels.SearchResponse) (*apimodels.HistoryEntry, error) {
	entry := NewEntry(query, resp)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.next] = entry
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return &entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (m *Memory) List(_ context.Context, limit int) ([]apimodels.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := m.next
	if m.full {
		size = len(m.entries)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]apimodels.HistoryEntry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
