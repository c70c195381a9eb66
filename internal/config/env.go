package config

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/vango-dev/navcore/internal/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr     = "NAVCORE_ADDR"
	EnvBase     = "NAVCORE_BASE"
	EnvLogLevel = "NAVCORE_LOG_LEVEL"
	EnvLogFile  = "NAVCORE_LOG_FILE"
)

// ApplyEnv loads the given dotenv files, or .env when none are given, and
// overlays NAVCORE_* variables onto the configuration. A missing default
// .env is not an error. Variables already set in the process environment
// take precedence over file values.
func (c *Config) ApplyEnv(files ...string) error {
	optional := len(files) == 0
	if optional {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if optional && stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.New(errors.CodeConfigParse).WithPath(f).Wrap(err)
		}
	}

	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvBase); v != "" {
		c.Base = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Log.File = v
	}
	return nil
}
