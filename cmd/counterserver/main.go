package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/cmd/utils"
	"github.com/anyswap/soroban-counter/internal/counterapi"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/params"
	rpcserver "github.com/anyswap/soroban-counter/rpc/server"
	"github.com/anyswap/soroban-counter/worker"
)

var (
	clientIdentifier = "counterserver"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the counterserver command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = counterserver
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func counterserver(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}
	exitCh := make(chan struct{})
	utils.TopWaitExit(exitCh)

	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadConfig(configFile)

	counter, err := worker.NewCounterFromConfig(config)
	if err != nil {
		log.Fatal("init counter failed", "err", err)
	}
	counterapi.SetCounter(counter)

	workCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rpcserver.StartAPIServer(workCtx)
	go worker.StartWork(workCtx, counter, configFile)

	<-exitCh
	log.Info("counterserver exit")
	return nil
}
