package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/cmd/utils"
)

var (
	clientIdentifier = "countertool"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the countertool command line interface")
)

func initApp() {
	app.HideVersion = true
	app.Commands = []*cli.Command{
		getCommand,
		incrementCommand,
		decrementCommand,
		resetCommand,
		keystoreCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		utils.SetLogger(ctx)
		return nil
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
