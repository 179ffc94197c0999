package logging

import (
	"log/slog"
)

// SetupServeMode initializes logging for the MCP server.
//
// The stdio transport uses stdout exclusively for JSON-RPC frames, and many
// hosts treat stderr output as a connection failure. Serve-mode logging
// therefore goes only to the rotating log file.
func SetupServeMode(level string) (func(), error) {
	if err := EnsureLogDir(); err != nil {
		return nil, err
	}

	cfg := Config{
		Level:         level,
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	logger.Info("serve mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
