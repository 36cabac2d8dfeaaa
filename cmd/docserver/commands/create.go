package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/docserver/internal/content"
)

// CreateCmd implements the 'create' command: submit one document
// through the same library path the HTTP API uses. Input must be the
// full file text, YAML header included.
type CreateCmd struct {
	Category    string `arg:"" help:"Target category"`
	Slug        string `arg:"" help:"Proposed slug (suffixed on collision)"`
	File        string `short:"f" help:"Document file to submit; '-' or empty reads stdin" optional:""`
	Subcategory string `short:"s" help:"Target subcategory directory" optional:""`
}

func (c *CreateCmd) Run(_ *Global, root *CLI) error {
	_, library, err := loadLibrary(root.Config)
	if err != nil {
		return err
	}

	var raw []byte
	if c.File == "" || c.File == "-" {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	} else {
		raw, err = os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("read %s: %w", c.File, err)
		}
	}

	result, err := library.Create(context.Background(), content.CreateRequest{
		Category:    c.Category,
		Subcategory: c.Subcategory,
		Slug:        c.Slug,
		Content:     raw,
	})
	if err != nil {
		return err
	}

	if result.Renamed {
		fmt.Printf("Slug %q was taken; stored as %s\n", c.Slug, result.Ref)
	} else {
		fmt.Printf("Stored as %s\n", result.Ref)
	}
	return nil
}
