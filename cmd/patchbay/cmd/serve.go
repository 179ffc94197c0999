package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/connectors"
	"github.com/patchbaylabs/patchbay/internal/logging"
	"github.com/patchbaylabs/patchbay/internal/mcp"
	"github.com/patchbaylabs/patchbay/internal/telemetry"
)

// serveOptions holds CLI flags for serve. Empty transport or addr defer to
// the config file.
type serveOptions struct {
	transport string
	addr      string
	debug     bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Long: `Run the MCP server over the configured transport.

The stdio transport speaks JSON-RPC on stdin/stdout for hosts that spawn
patchbay as a subprocess. The http transport listens on --addr and serves
MCP over streamable HTTP alongside /healthz and /connectors endpoints.

Logs go to the rotating file under ~/.patchbay/logs/. In stdio mode nothing
is written to stdout or stderr besides the protocol itself; use
'patchbay doctor' for diagnostics.`,
		Example: `  # Serve over stdio (what MCP hosts run)
  patchbay serve

  # Serve over HTTP on the configured address
  patchbay serve --transport http

  # Serve over HTTP on a specific address
  patchbay serve --transport http --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flags left at their defaults defer to the config file.
			if !cmd.Flags().Changed("transport") {
				opts.transport = ""
			}
			if !cmd.Flags().Changed("addr") {
				opts.addr = ""
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "MCP transport: stdio or http")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8700", "Listen address for the http transport")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log at debug level")

	return cmd
}

// runServe is shared by 'patchbay serve' and the bare invocation.
func runServe(ctx context.Context, opts serveOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.transport != "" {
		cfg.Server.Transport = opts.transport
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	// Flag values bypass the validation Load ran on the file.
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Server.LogLevel
	if opts.debug {
		level = "debug"
	}

	// In stdio mode stdout carries JSON-RPC and several hosts treat stderr
	// output as a failed connection, so logs go only to the rotating file.
	// A failed log setup degrades to no logging rather than blocking serve.
	if cfg.Server.Transport == "http" {
		logCfg := logging.DefaultConfig()
		logCfg.Level = level
		logger, cleanup, lerr := logging.Setup(logCfg)
		if lerr != nil {
			slog.SetDefault(logging.Nop())
		} else {
			slog.SetDefault(logger)
			defer cleanup()
		}
	} else {
		if err := verifyStdinForMCP(); err != nil {
			return err
		}
		cleanup, lerr := logging.SetupServeMode(level)
		if lerr != nil {
			slog.SetDefault(logging.Nop())
		} else {
			defer cleanup()
		}
	}

	registry, err := connectors.Build(cfg, connector.Settings{Logger: slog.Default()})
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		slog.Warn("no connectors enabled, serving an empty tool set",
			slog.String("hint", "run 'patchbay setup' to configure a connector"))
	}

	srv, err := mcp.NewServer(registry,
		mcp.WithLogger(slog.Default()),
		mcp.WithMetrics(telemetry.NewToolMetrics()))
	if err != nil {
		return err
	}

	if cfg.Server.Transport == "http" {
		slog.Info("serving MCP over http", slog.String("addr", cfg.Server.Addr))
		return srv.ServeHTTP(ctx, cfg.Server.Addr)
	}
	return srv.Run(ctx)
}

// verifyStdinForMCP rejects a terminal stdin before the stdio transport
// starts. An interactive invocation would otherwise hang waiting for
// JSON-RPC frames that never arrive.
func verifyStdinForMCP() error {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("stdin is a terminal, not an MCP host pipe: add patchbay to your host's MCP server list, or run 'patchbay serve --transport http'")
	}
	return nil
}
