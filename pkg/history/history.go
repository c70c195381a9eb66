// Package history defines the history backend a router drives, together
// with an in-memory implementation and a base-path adapter.
//
// A backend mirrors the browser History API: PushEntry and ReplaceEntry
// change the visible location without notifying anyone, while Go traverses
// existing entries and reports the new location to subscribers, the way a
// popstate event does.
package history

// Location is a position in the history stack.
type Location struct {
	// Path is the location's path, including any query string.
	Path string

	// Index is the position of the entry in the stack, starting at zero.
	Index int
}

// Backend is the capability set a router needs from a history
// implementation.
type Backend interface {
	// PushEntry adds a new entry after the current one and makes it
	// current. Entries after the current one are discarded.
	PushEntry(path string) error

	// ReplaceEntry overwrites the current entry.
	ReplaceEntry(path string) error

	// Go moves delta entries backwards (negative) or forwards (positive).
	// Subscribers are notified once the move completes. A move outside the
	// stack does nothing.
	Go(delta int) error

	// Subscribe registers fn for location-change notifications and returns
	// a function that removes it.
	Subscribe(fn func(Location)) (unsubscribe func())
}

// Locator is implemented by backends that can report their current entry.
// A router uses it to learn the starting index.
type Locator interface {
	Current() Location
}
