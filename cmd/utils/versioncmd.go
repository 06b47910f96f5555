package utils

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/params"
)

// VersionCommand prints build and network defaults
var VersionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version, build and default network info",
	ArgsUsage: " ",
}

func printVersion(ctx *cli.Context) error {
	info := params.GetVersionInfo()
	fmt.Printf("%v %v\n", clientIdentifier, info.Version)
	if info.GitCommit != "" {
		fmt.Printf("  commit:     %v %v\n", info.GitCommit, info.GitDate)
	}
	fmt.Printf("  go:         %v %v\n", info.GoVersion, info.Platform)
	fmt.Printf("  network:    %v\n", soroban.DefaultNetworkPassphrase)
	fmt.Printf("  rpc:        %v\n", soroban.DefaultRPCAddress)
	fmt.Printf("  contract:   %v\n", soroban.DefaultContractID)
	return nil
}
