package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/navcore/pkg/middleware"
	"github.com/vango-dev/navcore/pkg/nav"
	"github.com/vango-dev/navcore/pkg/routes"
	"github.com/vango-dev/navcore/pkg/server"
)

type serveOptions struct {
	addr      string
	base      string
	logLevel  string
	logFormat string
	logFile   string
	noMetrics bool
	noTracing bool
}

func serveCmd(flags *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the navigation server",
		Long: `Start the navigation server.

Browsers load the HTML shell from any path and open a websocket
session. Each session has its own router; the browser's address bar
and history follow the router.

Endpoints:
  /healthz   health check
  /metrics   Prometheus metrics
  /_nav/ws   websocket sessions (configurable)

Examples:
  navctl serve
  navctl serve --addr :8080 --base /app
  navctl serve --log-level debug --log-file logs/navcore.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.base, "base", "", "Base path the application is served under")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Also write logs to this rotating file")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Disable Prometheus metrics")
	cmd.Flags().BoolVar(&opts.noTracing, "no-tracing", false, "Disable OpenTelemetry spans")

	return cmd
}

func runServe(cmd *cobra.Command, flags *rootFlags, opts *serveOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}

	// Command-line overrides
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.base != "" {
		cfg.Base = opts.base
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ShutdownTimeout()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cmd.OutOrStdout(), cfg.Log, level)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closer.Close()

	serverCfg := server.DefaultServerConfig()
	serverCfg.Address = cfg.Server.Addr
	serverCfg.SocketPath = cfg.Server.SocketPath
	serverCfg.Base = cfg.Base
	serverCfg.AppName = cfg.Name
	serverCfg.NotFoundView = routes.ViewID(cfg.NotFoundView)
	serverCfg.ShutdownTimeout = shutdownTimeout
	if len(cfg.Server.AllowedOrigins) > 0 {
		serverCfg.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}

	serverOpts := []server.Option{server.WithLogger(logger)}
	if !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		serverOpts = append(serverOpts, server.WithMetrics(middleware.Prometheus(middleware.WithRegistry(reg)), reg))
	}
	if !opts.noTracing {
		serverOpts = append(serverOpts, server.WithNavOptions(nav.WithMiddleware(middleware.OpenTelemetry())))
	}

	logger.Info("config loaded",
		"source", cfg.Path(),
		"routes", table.Len(),
		"base", cfg.Base,
	)

	srv := server.New(table, serverCfg, serverOpts...)
	return srv.Run(ctx)
}
