package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docserver/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force       bool   `help:"Overwrite an existing configuration file"`
	ContentRoot string `help:"Directory for the sample content tree" default:"./content"`
	NoContent   bool   `help:"Write only the configuration file, no sample documents"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	fmt.Printf("Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	if !i.NoContent {
		if err := writeSampleContent(i.ContentRoot); err != nil {
			return fmt.Errorf("write sample content: %w", err)
		}
		fmt.Printf("Sample content written to %s\n", i.ContentRoot)
	}
	fmt.Println("Initialized successfully")
	return nil
}

// Sample tree: enough documents to show categories, subcategories and
// numeric slug ordering on the index page.
var sampleDocs = []struct {
	relPath string
	title   string
	body    string
}{
	{
		relPath: "guides/1-getting-started.md",
		title:   "Getting Started",
		body:    "Welcome to your documentation library.\n\nDrop markdown files under the category directories and they appear here.\n",
	},
	{
		relPath: "guides/2-writing-documents.md",
		title:   "Writing Documents",
		body:    "Every document starts with a YAML header containing at least a title.\nNumber the filename prefix to control prev/next ordering.\n",
	},
	{
		relPath: "concepts/java/1-classes.md",
		title:   "Classes",
		body:    "Documents can live in subcategory directories, like this one under concepts/java.\n",
	},
}

func writeSampleContent(contentRoot string) error {
	for _, doc := range sampleDocs {
		path := filepath.Join(contentRoot, filepath.FromSlash(doc.relPath))
		if _, err := os.Stat(path); err == nil {
			continue // never clobber existing content
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		text := fmt.Sprintf("---\ntitle: %s\ndescription: Sample document\n---\n\n%s", doc.title, doc.body)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return err
		}
	}
	return nil
}
