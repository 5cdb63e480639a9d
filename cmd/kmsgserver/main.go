// Command kmsgserver runs the encrypted direct-messaging server.
//
// Usage:
//
//	kmsgserver [flags]
//
// Flags:
//
//	--host         Listen host (default: localhost)
//	--port         Listen port (default: 6074)
//	--verbosity    Log level: debug, info, warn, error (default: info)
//	--log-format   Log output format: text, json, color (default: json)
//	--version      Print version and exit
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	kmlog "github.com/kuyugama/kmessenger/log"
	"github.com/kuyugama/kmessenger/session"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	level, err := parseLevel(cfg.verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	handler, err := newHandler(cfg.logFormat, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	kmlog.SetDefault(kmlog.NewWithHandler(handler))

	logger := kmlog.Default().Module("cmd")
	logger.Info("kmsgserver starting",
		"version", version,
		"host", cfg.session.Host,
		"port", cfg.session.Port,
		"verbosity", cfg.verbosity,
		"log-format", cfg.logFormat,
	)

	srv := session.NewServer(cfg.session)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		return 1
	}
	logger.Info("listening", "addr", srv.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := srv.Stop(); err != nil {
		logger.Error("error during shutdown", "error", err)
		return 1
	}

	logger.Info("shutdown complete")
	return 0
}

// parseFlags parses CLI arguments into a cliConfig. Returns the config,
// whether the caller should exit immediately, and the exit code.
func parseFlags(args []string) (cliConfig, bool, int) {
	cfg := cliConfig{
		session:   session.Config{Host: "localhost", Port: 6074},
		verbosity: "info",
		logFormat: "json",
	}
	fs := newFlagSet(&cfg)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if cfg.showVersion {
		fmt.Printf("kmsgserver %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}

// parseLevel validates verbosity strictly (unlike LevelFromString, which
// defaults unrecognized input to INFO) and converts it to a slog.Level via
// log.LevelFromString/log.ToSlogLevel.
func parseLevel(verbosity string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(verbosity)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		return kmlog.ToSlogLevel(kmlog.LevelFromString(verbosity)), nil
	default:
		return 0, fmt.Errorf("unknown verbosity %q (want debug, info, warn, or error)", verbosity)
	}
}

func newHandler(format string, level slog.Level) (slog.Handler, error) {
	var formatter kmlog.LogFormatter
	switch format {
	case "json":
		formatter = &kmlog.JSONFormatter{}
	case "text":
		formatter = &kmlog.TextFormatter{}
	case "color":
		formatter = &kmlog.ColorFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q (want text, json, or color)", format)
	}
	return kmlog.NewFormatterHandler(formatter, level, os.Stderr), nil
}
