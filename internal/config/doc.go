// Package config loads navcore configuration.
//
// The configuration lives in navcore.json or navcore.toml in the project
// directory, or in an S3 object. Both formats carry the same fields:
//
//	{
//	  "name": "demo",
//	  "base": "/app",
//	  "maxRedirects": 10,
//	  "notFoundView": "NotFoundView",
//	  "routes": [
//	    {"path": "/", "redirect": "/module1"},
//	    {"path": "/module1", "name": "Module1", "view": "ModuleOneView"}
//	  ],
//	  "server": {"addr": ":3000", "socketPath": "/_nav/ws"},
//	  "log": {"level": "info", "file": "navcore.log"}
//	}
//
// A route entry has either a view or a redirect target, never both.
// Without a routes list the built-in table is used.
//
// # Environment
//
// ApplyEnv reads .env (if present) and then overlays NAVCORE_ADDR,
// NAVCORE_BASE, NAVCORE_LOG_LEVEL and NAVCORE_LOG_FILE.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	table, err := cfg.Table()
package config
