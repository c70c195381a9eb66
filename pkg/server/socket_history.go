package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routes"
)

// SocketHistory is a history.Backend whose entries live in the browser.
// Writes are forwarded as push, replace and go commands; the browser
// reports traversals back as location messages, which Pop turns into
// subscriber notifications.
type SocketHistory struct {
	send func(ServerMessage) error

	mu      sync.Mutex
	current history.Location
	subs    map[int]func(history.Location)
	nextID  int
}

var (
	_ history.Backend = (*SocketHistory)(nil)
	_ history.Locator = (*SocketHistory)(nil)
)

// NewSocketHistory creates a history that writes commands with send.
func NewSocketHistory(send func(ServerMessage) error) *SocketHistory {
	return &SocketHistory{
		send: send,
		subs: make(map[int]func(history.Location)),
	}
}

// Reset sets the current entry without notifying, e.g. from a hello
// message.
func (h *SocketHistory) Reset(loc history.Location) {
	h.mu.Lock()
	h.current = loc
	h.mu.Unlock()
}

// PushEntry implements history.Backend.
func (h *SocketHistory) PushEntry(path string) error {
	h.mu.Lock()
	h.current = history.Location{Path: path, Index: h.current.Index + 1}
	h.mu.Unlock()
	return h.send(ServerMessage{Op: OpPush, Path: path})
}

// ReplaceEntry implements history.Backend.
func (h *SocketHistory) ReplaceEntry(path string) error {
	h.mu.Lock()
	h.current.Path = path
	h.mu.Unlock()
	return h.send(ServerMessage{Op: OpReplace, Path: path})
}

// Go implements history.Backend. The browser ignores moves past either end
// of its history, so no notification follows them.
func (h *SocketHistory) Go(delta int) error {
	if delta == 0 {
		return nil
	}
	return h.send(ServerMessage{Op: OpGo, Delta: delta})
}

// Subscribe implements history.Backend.
func (h *SocketHistory) Subscribe(fn func(history.Location)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Current implements history.Locator.
func (h *SocketHistory) Current() history.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Pop records a traversal reported by the browser and notifies
// subscribers. Notifications run on the caller's goroutine.
func (h *SocketHistory) Pop(loc history.Location) {
	h.mu.Lock()
	h.current = loc
	subs := make([]func(history.Location), 0, len(h.subs))
	for id := 0; id < h.nextID; id++ {
		if fn, ok := h.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(loc)
	}
}

// SocketRenderer mounts views by telling the browser which view to show.
type SocketRenderer struct {
	send  func(ServerMessage) error
	views map[routes.ViewID]struct{}
}

// NewSocketRenderer creates a renderer. If views is non-empty, mounting any
// other view fails.
func NewSocketRenderer(send func(ServerMessage) error, views ...routes.ViewID) *SocketRenderer {
	r := &SocketRenderer{send: send}
	if len(views) > 0 {
		r.views = make(map[routes.ViewID]struct{}, len(views))
		for _, v := range views {
			r.views[v] = struct{}{}
		}
	}
	return r
}

// Mount implements nav.Renderer.
func (r *SocketRenderer) Mount(ctx context.Context, view routes.ViewID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.views != nil {
		if _, ok := r.views[view]; !ok {
			return fmt.Errorf("unknown view %q", view)
		}
	}
	return r.send(ServerMessage{Op: OpMount, View: view})
}
