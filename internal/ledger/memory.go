package ledger

import (
	"context"
	"sync"

	"github.com/bevalen/tune-energy-ocr-ui/constants"
)

// Memory is an in-process Ledger used in tests and as a stand-in when no
// database is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

func (m *Memory) Active(_ context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make(map[string]struct{})
	for name, e := range m.entries {
		if !e.Status.Terminal() {
			active[name] = struct{}{}
		}
	}
	return active, nil
}

func (m *Memory) Claim(_ context.Context, filename string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[filename]; ok && !e.Status.Terminal() {
		return false, nil
	}
	m.entries[filename] = Entry{Filename: filename, Status: constants.StatusProcessing}
	return true, nil
}

func (m *Memory) Upsert(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Filename] = entry
	return nil
}

// Get returns the entry for a filename, for assertions in tests.
func (m *Memory) Get(filename string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[filename]
	return e, ok
}
