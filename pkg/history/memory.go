package history

import (
	"errors"
	"sync"
)

// ErrEmpty is returned when an in-memory history has no entry to replace.
var ErrEmpty = errors.New("history: no current entry")

// Memory is an in-memory Backend. The zero value is an empty history.
// It serves tests, headless hosts and command line tools that need history
// semantics without a browser.
//
// Notifications are delivered synchronously from Go, after the internal
// lock is released, so a subscriber may call back into the history.
type Memory struct {
	mu      sync.Mutex
	entries []string
	index   int

	subs   map[int]func(Location)
	nextID int
}

// NewMemory creates a history whose single entry is initial.
func NewMemory(initial string) *Memory {
	return &Memory{
		entries: []string{initial},
		subs:    make(map[int]func(Location)),
	}
}

// PushEntry implements Backend.
func (m *Memory) PushEntry(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == 0 {
		m.entries = []string{path}
		m.index = 0
		return nil
	}
	m.entries = append(m.entries[:m.index+1], path)
	m.index = len(m.entries) - 1
	return nil
}

// ReplaceEntry implements Backend.
func (m *Memory) ReplaceEntry(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == 0 {
		return ErrEmpty
	}
	m.entries[m.index] = path
	return nil
}

// Go implements Backend.
func (m *Memory) Go(delta int) error {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return nil
	}
	m.index = target
	loc := Location{Path: m.entries[target], Index: target}
	subs := m.subscribers()
	m.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
	return nil
}

// Back moves one entry backwards.
func (m *Memory) Back() error { return m.Go(-1) }

// Forward moves one entry forwards.
func (m *Memory) Forward() error { return m.Go(1) }

// Subscribe implements Backend.
func (m *Memory) Subscribe(fn func(Location)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subs == nil {
		m.subs = make(map[int]func(Location))
	}
	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Current returns the current location.
func (m *Memory) Current() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Location{}
	}
	return Location{Path: m.entries[m.index], Index: m.index}
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Entries returns a copy of all entries, oldest first.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// subscribers returns the subscriber callbacks in registration order.
// Callers must hold m.mu.
func (m *Memory) subscribers() []func(Location) {
	out := make([]func(Location), 0, len(m.subs))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
