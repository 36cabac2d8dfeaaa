package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/daemon"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests on shutdown" default:"30s"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := configureLogger(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer stopCancel()
	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop daemon: %w", err)
	}
	return nil
}
