package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBaseJoinStrip(t *testing.T) {
	b := WithBase(NewMemory("/app/"), "/app/")
	if b.Prefix() != "/app" {
		t.Fatalf("Prefix = %q, want /app", b.Prefix())
	}

	joins := map[string]string{
		"/":        "/app/",
		"/module1": "/app/module1",
		"/m?x=1":   "/app/m?x=1",
		"?x=1":     "/app/?x=1",
		"":         "/app/",
	}
	for in, want := range joins {
		if got := b.Join(in); got != want {
			t.Errorf("Join(%q) = %q, want %q", in, got, want)
		}
	}

	strips := map[string]string{
		"/app":          "/",
		"/app/":         "/",
		"/app/module1":  "/module1",
		"/app?x=1":      "/?x=1",
		"/application":  "/application",
		"/other/module": "/other/module",
	}
	for in, want := range strips {
		if got := b.Strip(in); got != want {
			t.Errorf("Strip(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBaseNoPrefix(t *testing.T) {
	for _, base := range []string{"", "/"} {
		b := WithBase(NewMemory("/"), base)
		if b.Join("/m") != "/m" || b.Strip("/m") != "/m" {
			t.Errorf("base %q should be transparent", base)
		}
	}
	if got := WithBase(nil, "app").Prefix(); got != "/app" {
		t.Errorf("Prefix = %q, want /app", got)
	}
}

func TestBaseWrapsBackend(t *testing.T) {
	mem := NewMemory("/app/")
	b := WithBase(mem, "/app")

	var seen []Location
	b.Subscribe(func(loc Location) { seen = append(seen, loc) })

	b.ReplaceEntry("/module1")
	b.PushEntry("/module2")
	b.Go(-1)

	if diff := cmp.Diff([]string{"/app/module1", "/app/module2"}, mem.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Location{{Path: "/module1", Index: 0}}, seen); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}

	if got := b.Current(); got != (Location{Path: "/module1", Index: 0}) {
		t.Errorf("Current = %+v, want /module1 at 0", got)
	}
}
