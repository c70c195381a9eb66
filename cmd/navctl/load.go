package main

import (
	"context"

	"github.com/vango-dev/navcore/internal/config"
	"github.com/vango-dev/navcore/pkg/routes"
)

// loadConfig reads the configured source and applies the environment.
// Validation is left to the caller so flag overrides can be applied first.
func loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.LoadSource(ctx, flags.config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(flags.envFiles...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTable loads and validates the configuration and builds its table.
func loadTable(ctx context.Context, flags *rootFlags) (*config.Config, *routes.Table, error) {
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, nil, err
	}
	return cfg, table, nil
}
