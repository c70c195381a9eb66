package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routes"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "navcore.json"

	// TOMLFileName is the TOML configuration file name.
	TOMLFileName = "navcore.toml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":3000"

	// DefaultSocketPath is the default websocket endpoint.
	DefaultSocketPath = "/_nav/ws"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "10s"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// Config is the complete navcore configuration.
type Config struct {
	// Name is the application name, shown in the HTML shell title.
	Name string `json:"name,omitempty" toml:"name,omitempty"`

	// Base is the path prefix the application is served under.
	Base string `json:"base,omitempty" toml:"base,omitempty"`

	// MaxRedirects bounds redirect chains.
	MaxRedirects int `json:"maxRedirects,omitempty" toml:"max_redirects,omitempty"`

	// NotFoundView is mounted for unresolvable paths. Empty means
	// unresolvable paths fail.
	NotFoundView string `json:"notFoundView,omitempty" toml:"not_found_view,omitempty"`

	// Routes is the route table. Empty means the built-in table.
	Routes []RouteConfig `json:"routes,omitempty" toml:"routes,omitempty"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" toml:"server"`

	// Log contains logging settings.
	Log LogConfig `json:"log" toml:"log"`

	// configPath stores where the config was loaded from.
	configPath string
}

// RouteConfig is one route table entry.
type RouteConfig struct {
	Path     string `json:"path" toml:"path"`
	Name     string `json:"name,omitempty" toml:"name,omitempty"`
	View     string `json:"view,omitempty" toml:"view,omitempty"`
	Redirect string `json:"redirect,omitempty" toml:"redirect,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`

	// SocketPath is the websocket endpoint.
	SocketPath string `json:"socketPath,omitempty" toml:"socket_path,omitempty"`

	// ShutdownTimeout is a duration string, e.g. "10s".
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" toml:"shutdown_timeout,omitempty"`

	// AllowedOrigins lists origins accepted for websocket upgrades.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowed_origins,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`

	// File enables a rotating log file in addition to stdout.
	File string `json:"file,omitempty" toml:"file,omitempty"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `json:"maxSizeMB,omitempty" toml:"max_size_mb,omitempty"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `json:"maxBackups,omitempty" toml:"max_backups,omitempty"`

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `json:"maxAgeDays,omitempty" toml:"max_age_days,omitempty"`
}

// New creates a Config with default values and the built-in route table.
func New() *Config {
	return &Config{
		Name:         "navcore",
		MaxRedirects: routes.DefaultMaxRedirects,
		Routes:       FromRoutes(routes.DefaultRoutes()),
		Server: ServerConfig{
			Addr:            DefaultAddr,
			SocketPath:      DefaultSocketPath,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// FromRoutes converts route definitions into config entries.
func FromRoutes(defs []routes.Route) []RouteConfig {
	out := make([]RouteConfig, 0, len(defs))
	for _, def := range defs {
		switch r := def.(type) {
		case routes.View:
			out = append(out, RouteConfig{Path: r.Path, Name: r.Name, View: string(r.View)})
		case routes.Redirect:
			out = append(out, RouteConfig{Path: r.Path, Name: r.Name, Redirect: r.Target})
		}
	}
	return out
}

// Load reads configuration from dir. It looks for navcore.json first and
// then navcore.toml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, TOMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No " + JSONFileName + " or " + TOMLFileName + " found in " + dir).
		WithSuggestion("Run 'navctl init' to create one")
}

// LoadFile reads configuration from path. Files ending in .toml are read
// as TOML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).WithPath(path)
		}
		return nil, errors.New(errors.CodeConfigParse).WithPath(path).Wrap(err)
	}

	cfg, perr := parse(data, formatOf(path))
	if perr != nil {
		return nil, perr.WithPath(path)
	}
	cfg.configPath = path
	return cfg, nil
}

// Format is a configuration file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

func formatOf(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Parse decodes configuration data over the defaults.
func Parse(data []byte, format Format) (*Config, error) {
	cfg, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte, format Format) (*Config, *errors.NavError) {
	cfg := New()
	// A routes list in the file replaces the built-in one.
	cfg.Routes = nil

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.New(errors.CodeConfigParse).
				WithDetail("Failed to parse TOML: " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.CodeConfigParse).
				WithDetail("Failed to parse JSON: " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the configuration to path, choosing the format from the
// file extension.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	switch formatOf(path) {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.New(errors.CodeConfigParse).Wrap(err)
		}
	default:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return errors.New(errors.CodeConfigParse).Wrap(err)
		}
		buf.Write(data)
		// Add newline at end of file
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New(errors.CodeConfigParse).WithPath(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.MaxRedirects == 0 {
		c.MaxRedirects = routes.DefaultMaxRedirects
	}
	if len(c.Routes) == 0 {
		c.Routes = FromRoutes(routes.DefaultRoutes())
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SocketPath == "" {
		c.Server.SocketPath = DefaultSocketPath
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration, including the route table.
func (c *Config) Validate() error {
	invalid := errors.New(errors.CodeConfigInvalid)

	if c.MaxRedirects < 0 {
		return invalid.WithDetail("maxRedirects must not be negative")
	}
	if c.Server.Addr == "" {
		return invalid.WithDetail("server.addr must be set")
	}
	if !strings.HasPrefix(c.Server.SocketPath, "/") {
		return invalid.WithDetail(fmt.Sprintf("server.socketPath %q must start with /", c.Server.SocketPath))
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return invalid.WithDetail(fmt.Sprintf("server.shutdownTimeout %q is not a duration", c.Server.ShutdownTimeout))
	}
	if _, err := c.LogLevel(); err != nil {
		return invalid.WithDetail(fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid.WithDetail(fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if _, err := c.Table(); err != nil {
		return err
	}
	return nil
}

// Table builds the route table described by the configuration.
func (c *Config) Table() (*routes.Table, error) {
	defs := make([]routes.Route, 0, len(c.Routes))
	for i, rc := range c.Routes {
		switch {
		case rc.View != "" && rc.Redirect != "":
			return nil, errors.New(errors.CodeConfigInvalid).
				WithPath(rc.Path).
				WithDetail(fmt.Sprintf("route %d has both a view and a redirect", i))
		case rc.View != "":
			defs = append(defs, routes.View{Path: rc.Path, Name: rc.Name, View: routes.ViewID(rc.View)})
		case rc.Redirect != "":
			defs = append(defs, routes.Redirect{Path: rc.Path, Name: rc.Name, Target: rc.Redirect})
		default:
			return nil, errors.New(errors.CodeConfigInvalid).
				WithPath(rc.Path).
				WithDetail(fmt.Sprintf("route %d has neither a view nor a redirect", i))
		}
	}

	var opts []routes.Option
	if c.MaxRedirects > 0 {
		opts = append(opts, routes.WithMaxRedirects(c.MaxRedirects))
	}
	table, err := routes.New(defs, opts...)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	return table, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// ShutdownTimeout parses Server.ShutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}
