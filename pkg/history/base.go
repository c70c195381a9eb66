package history

import "strings"

// Base prefixes every path written to a backend with a fixed base path and
// strips it from notifications, so a router can work with application paths
// while the address bar shows /app/module1.
type Base struct {
	backend Backend
	prefix  string
}

var _ Backend = (*Base)(nil)

// WithBase wraps backend with the given base path. A base of "" or "/" adds
// no prefix.
func WithBase(backend Backend, base string) *Base {
	return &Base{backend: backend, prefix: normalizeBase(base)}
}

// Prefix returns the normalized base path, without a trailing slash.
func (b *Base) Prefix() string {
	return b.prefix
}

// PushEntry implements Backend.
func (b *Base) PushEntry(path string) error {
	return b.backend.PushEntry(b.Join(path))
}

// ReplaceEntry implements Backend.
func (b *Base) ReplaceEntry(path string) error {
	return b.backend.ReplaceEntry(b.Join(path))
}

// Go implements Backend.
func (b *Base) Go(delta int) error {
	return b.backend.Go(delta)
}

// Subscribe implements Backend.
func (b *Base) Subscribe(fn func(Location)) func() {
	return b.backend.Subscribe(func(loc Location) {
		loc.Path = b.Strip(loc.Path)
		fn(loc)
	})
}

// Current returns the wrapped backend's current location with the prefix
// removed. It returns the zero Location if the backend is not a Locator.
func (b *Base) Current() Location {
	l, ok := b.backend.(Locator)
	if !ok {
		return Location{}
	}
	loc := l.Current()
	loc.Path = b.Strip(loc.Path)
	return loc
}

// Join adds the base prefix to an application path.
func (b *Base) Join(path string) string {
	if b.prefix == "" {
		return path
	}
	if path == "/" || path == "" {
		return b.prefix + "/"
	}
	if strings.HasPrefix(path, "?") || strings.HasPrefix(path, "#") {
		return b.prefix + "/" + path
	}
	return b.prefix + path
}

// Strip removes the base prefix from a full path. Paths outside the base are
// returned unchanged.
func (b *Base) Strip(path string) string {
	if b.prefix == "" || !strings.HasPrefix(path, b.prefix) {
		return path
	}
	rest := path[len(b.prefix):]
	switch {
	case rest == "":
		return "/"
	case rest[0] == '/':
		return rest
	case rest[0] == '?' || rest[0] == '#':
		return "/" + rest
	default:
		// "/application" does not live under "/app".
		return path
	}
}

func normalizeBase(base string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base
}
