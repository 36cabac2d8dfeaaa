// Package commands defines the docserver CLI: serve, init, list,
// create and check.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/content"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docserver.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Run the documentation server"`
	Init   InitCmd   `cmd:"" help:"Write a starter configuration and sample content tree"`
	List   ListCmd   `cmd:"" help:"List documents in the content tree"`
	Create CreateCmd `cmd:"" help:"Submit a new document from a file or stdin"`
	Check  CheckCmd  `cmd:"" help:"Lint the content tree; non-zero exit on errors"`
}

// AfterApply runs after flag parsing; installs the default logger once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadLibrary loads the configuration and builds an uncached library
// over its content tree, the shared entry point for the offline
// commands (list, create, check).
func loadLibrary(configPath string) (*config.Config, *content.Library, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	library := content.NewLibrary(content.Config{
		Root:       cfg.Content.Root,
		Categories: cfg.Content.Categories,
		Extensions: cfg.Content.Extensions,
	}, content.WithoutCache())
	return cfg, library, nil
}

// configureLogger rebuilds the default logger from the configured
// level and format, overriding the text logger AfterApply installed.
func configureLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg.Monitoring != nil {
		switch cfg.Monitoring.Logging.Level {
		case config.LogLevelDebug:
			level = slog.LevelDebug
		case config.LogLevelWarn:
			level = slog.LevelWarn
		case config.LogLevelError:
			level = slog.LevelError
		}
		format = cfg.Monitoring.Logging.Format
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
