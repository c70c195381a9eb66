package server

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routes"
)

type sink struct {
	msgs []ServerMessage
}

func (s *sink) send(msg ServerMessage) error {
	s.msgs = append(s.msgs, msg)
	return nil
}

func TestSocketHistoryWrites(t *testing.T) {
	var out sink
	h := NewSocketHistory(out.send)
	h.Reset(history.Location{Path: "/module1", Index: 2})

	h.PushEntry("/module2")
	if got, want := h.Current(), (history.Location{Path: "/module2", Index: 3}); got != want {
		t.Errorf("Current after push = %+v, want %+v", got, want)
	}
	h.ReplaceEntry("/module3")
	if got, want := h.Current(), (history.Location{Path: "/module3", Index: 3}); got != want {
		t.Errorf("Current after replace = %+v, want %+v", got, want)
	}
	h.Go(0)
	h.Go(-2)

	want := []ServerMessage{
		{Op: OpPush, Path: "/module2"},
		{Op: OpReplace, Path: "/module3"},
		{Op: OpGo, Delta: -2},
	}
	if diff := cmp.Diff(want, out.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestSocketHistoryPop(t *testing.T) {
	var out sink
	h := NewSocketHistory(out.send)

	var got []history.Location
	unsubscribe := h.Subscribe(func(loc history.Location) {
		got = append(got, loc)
		// Reading state from a subscriber must not deadlock.
		_ = h.Current()
	})

	h.Pop(history.Location{Path: "/module2", Index: 1})
	unsubscribe()
	h.Pop(history.Location{Path: "/module1", Index: 0})

	if diff := cmp.Diff([]history.Location{{Path: "/module2", Index: 1}}, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
	if h.Current().Path != "/module1" {
		t.Errorf("Current = %+v, want /module1", h.Current())
	}
	if len(out.msgs) != 0 {
		t.Errorf("Pop sent %v", out.msgs)
	}
}

func TestSocketRenderer(t *testing.T) {
	var out sink
	r := NewSocketRenderer(out.send, routes.ModuleOneView)

	if err := r.Mount(context.Background(), routes.ModuleOneView); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := r.Mount(context.Background(), "Unknown"); err == nil {
		t.Error("Mount of unknown view should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Mount(ctx, routes.ModuleOneView); err == nil {
		t.Error("Mount with cancelled context should fail")
	}

	if diff := cmp.Diff([]ServerMessage{{Op: OpMount, View: routes.ModuleOneView}}, out.msgs); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	open := NewSocketRenderer(out.send)
	if err := open.Mount(context.Background(), "Anything"); err != nil {
		t.Errorf("unrestricted Mount: %v", err)
	}
}

func TestClientMessageValidate(t *testing.T) {
	tests := []struct {
		msg     ClientMessage
		wantErr bool
	}{
		{ClientMessage{Type: TypeHello, Path: "/"}, false},
		{ClientMessage{Type: TypeNavigate, Path: "/module2", Replace: true}, false},
		{ClientMessage{Type: TypeLocation, Path: "/module1", Index: 3}, false},
		{ClientMessage{Type: TypeBack}, false},
		{ClientMessage{Type: TypeForward}, false},
		{ClientMessage{Type: TypeHello}, true},
		{ClientMessage{Type: TypeNavigate}, true},
		{ClientMessage{Type: TypeLocation, Path: "/", Index: -1}, true},
		{ClientMessage{}, true},
		{ClientMessage{Type: "reload"}, true},
	}
	for _, tt := range tests {
		err := tt.msg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) = %v, wantErr %v", tt.msg, err, tt.wantErr)
		}
	}
}
