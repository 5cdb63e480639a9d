package main

import (
	"flag"

	"github.com/kuyugama/kmessenger/session"
)

// flagSet wraps flag.FlagSet with ContinueOnError so callers control the
// error-handling behavior instead of flag's default of exiting the
// process.
type flagSet struct {
	*flag.FlagSet
}

func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// cliConfig holds everything parseFlags fills in, ambient CLI concerns
// (log format/verbosity) alongside the session.Config the server needs.
type cliConfig struct {
	session     session.Config
	verbosity   string
	logFormat   string
	showVersion bool
}

// newFlagSet creates a flag.FlagSet that binds all CLI flags to a
// cliConfig, per SPEC_FULL.md §10.
func newFlagSet(cfg *cliConfig) *flagSet {
	fs := newCustomFlagSet("kmsgserver")
	fs.StringVar(&cfg.session.Host, "host", cfg.session.Host, "listen host")
	fs.IntVar(&cfg.session.Port, "port", cfg.session.Port, "listen port")
	fs.StringVar(&cfg.verbosity, "verbosity", cfg.verbosity, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.logFormat, "log-format", cfg.logFormat, "log output format (text, json, color)")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version and exit")
	return fs
}
