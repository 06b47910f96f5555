package utils

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/params"
)

var clientIdentifier string

// NewApp creates an app with sane defaults.
func NewApp(identifier, gitcommit, gitdate, usage string) *cli.App {
	clientIdentifier = identifier
	params.SetBuildInfo(gitcommit, gitdate)
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = params.BuildVersion()
	app.Usage = usage
	return app
}

// TopWaitExit close exitCh on SIGINT or SIGTERM
func TopWaitExit(exitCh chan struct{}) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		log.Info("receive signal to exit", "signal", sig)
		close(exitCh)
	}()
}
