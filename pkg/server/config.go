package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/navcore/pkg/routes"
)

// ServerConfig holds HTTP and websocket settings.
type ServerConfig struct {
	// Address is the listen address (default ":3000").
	Address string

	// SocketPath is the websocket endpoint (default "/_nav/ws").
	SocketPath string

	// Base is the prefix the application is served under. History entries
	// written to the browser carry it; navigate messages do not.
	Base string

	// AppName is the HTML shell title.
	AppName string

	// NotFoundView is mounted for unresolvable paths. Empty means such
	// navigations fail and the client receives an error message.
	NotFoundView routes.ViewID

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// MaxMessageSize limits client messages in bytes.
	MaxMessageSize int64

	// CheckOrigin validates the websocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// HeartbeatInterval is the websocket ping interval.
	HeartbeatInterval time.Duration

	// ReadTimeout closes a connection that sends nothing, not even a pong,
	// for this long.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration

	// ReadHeaderTimeout bounds reading HTTP request headers.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns a ServerConfig with default values.
//
// SECURITY: CheckOrigin enforces same-origin by default.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":3000",
		SocketPath:        "/_nav/ws",
		AppName:           "navcore",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxMessageSize:    64 * 1024,
		CheckOrigin:       SameOriginCheck,
		HeartbeatInterval: 30 * time.Second,
		ReadTimeout:       90 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// applyDefaults fills in defaults for unset fields.
func (c *ServerConfig) applyDefaults() {
	d := DefaultServerConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.SocketPath == "" {
		c.SocketPath = d.SocketPath
	}
	if c.AppName == "" {
		c.AppName = d.AppName
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
}

// SameOriginCheck validates that the websocket request origin matches the
// host. Requests without an Origin header are accepted.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}

// AllowOrigins returns an origin check that accepts same-origin requests
// and the listed origins, e.g. "https://app.example.com".
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}
