package presence

import (
	"context"
	"sort"
	"sync"
)

// MemoryTracker keeps presence in process memory; it is lost on restart.
type MemoryTracker struct {
	mu     sync.RWMutex
	conns  map[string]Entry
	byUser map[string]map[string]struct{}
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		conns:  make(map[string]Entry),
		byUser: make(map[string]map[string]struct{}),
	}
}

func (t *MemoryTracker) Join(_ context.Context, e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.conns[e.ConnID]; ok && old.Username != e.Username {
		t.unlink(old)
	}
	t.conns[e.ConnID] = e
	set, ok := t.byUser[e.Username]
	if !ok {
		set = make(map[string]struct{})
		t.byUser[e.Username] = set
	}
	set[e.ConnID] = struct{}{}
	return nil
}

func (t *MemoryTracker) Lookup(_ context.Context, connID string) (Entry, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.conns[connID]
	return e, ok, nil
}

func (t *MemoryTracker) Leave(_ context.Context, connID string) (Entry, bool, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.conns[connID]
	if !ok {
		return Entry{}, false, 0, nil
	}
	delete(t.conns, connID)
	t.unlink(e)
	return e, true, len(t.byUser[e.Username]), nil
}

// Refresh is a no-op; memory entries live as long as the connection.
func (t *MemoryTracker) Refresh(context.Context, string) error {
	return nil
}

func (t *MemoryTracker) OnlineUsers(context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byUser))
	for u := range t.byUser {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

// unlink must be called with mu held.
func (t *MemoryTracker) unlink(e Entry) {
	set := t.byUser[e.Username]
	delete(set, e.ConnID)
	if len(set) == 0 {
		delete(t.byUser, e.Username)
	}
}
