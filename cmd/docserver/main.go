package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docserver/cmd/docserver/commands"
	"git.home.luguber.info/inful/docserver/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docserver"),
		kong.Description("Filesystem-backed documentation server: serve, list, submit and lint markdown content."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}))
}
