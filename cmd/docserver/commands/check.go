package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/docserver/internal/config"
	"git.home.luguber.info/inful/docserver/internal/lint"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	linter := lint.New(cfg.Content.Root, cfg.Content.Categories, cfg.Content.Extensions, slog.Default())
	result, err := linter.Run(context.Background())
	if err != nil {
		return err
	}

	if c.Format == "json" {
		out, err := lint.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(lint.FormatText(result))
	}

	if result.HasErrors() {
		return fmt.Errorf("%d content errors found", result.ErrorCount())
	}
	return nil
}
