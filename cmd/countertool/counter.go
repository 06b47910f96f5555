package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/cmd/utils"
	"github.com/anyswap/soroban-counter/params"
	"github.com/anyswap/soroban-counter/types"
	"github.com/anyswap/soroban-counter/worker"
)

var (
	counterFlags = []cli.Flag{
		utils.ConfigFileFlag,
		utils.RPCAddressFlag,
		utils.KeystoreFileFlag,
		utils.PasswordFileFlag,
	}

	getCommand = &cli.Command{
		Action:    getCount,
		Name:      "get",
		Usage:     "read the current counter value",
		ArgsUsage: " ",
		Flags:     append(counterFlags, utils.SourceFlag),
	}
	incrementCommand = invokeCommand(types.OpIncrement, "increment the counter")
	decrementCommand = invokeCommand(types.OpDecrement, "decrement the counter")
	resetCommand     = invokeCommand(types.OpReset, "reset the counter to zero")
)

func invokeCommand(op types.Operation, usage string) *cli.Command {
	return &cli.Command{
		Action: func(ctx *cli.Context) error {
			return invoke(ctx, op)
		},
		Name:      op.String(),
		Usage:     usage,
		ArgsUsage: " ",
		Flags:     counterFlags,
	}
}

// loadConfig config file if specified, then apply flags
func loadConfig(ctx *cli.Context) (*params.CounterConfig, error) {
	config := &params.CounterConfig{}
	if configFile := utils.GetConfigFilePath(ctx); configFile != "" {
		var err error
		config, err = params.LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
	}
	if rpcAddrs := ctx.StringSlice(utils.RPCAddressFlag.Name); len(rpcAddrs) > 0 {
		if config.Network == nil {
			config.Network = &params.NetworkConfig{}
		}
		config.Network.RPCAddress = rpcAddrs
	}
	if keyfile := ctx.String(utils.KeystoreFileFlag.Name); keyfile != "" {
		config.Signer = &params.SignerConfig{
			Mode:         params.SignerModeKeystore,
			KeyFile:      keyfile,
			PasswordFile: ctx.String(utils.PasswordFileFlag.Name),
		}
	}
	params.SetConfig(config)
	return config, nil
}

func newCounter(ctx *cli.Context) (*worker.Counter, error) {
	config, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return worker.NewCounterFromConfig(config)
}

func getCount(ctx *cli.Context) error {
	counter, err := newCounter(ctx)
	if err != nil {
		return err
	}
	if source := ctx.String(utils.SourceFlag.Name); source != "" {
		counter.SetAddress(source)
	}
	outcome, err := counter.Refresh(context.Background()).Result()
	if err != nil {
		return err
	}
	fmt.Printf("count: %v (read by %v)\n", color.GreenString(outcome.Value.String()), outcome.Carrier)
	return nil
}

func invoke(ctx *cli.Context, op types.Operation) error {
	counter, err := newCounter(ctx)
	if err != nil {
		return err
	}
	address, err := counter.Connect(context.Background())
	if err != nil {
		return err
	}
	fmt.Println("source:", color.CyanString(address))
	fmt.Println("before:", counter.CurrentValue())

	outcome, err := counter.Invoke(context.Background(), op).Result()
	printOutcome(outcome, err)
	return err
}

func printOutcome(outcome *worker.Outcome, err error) {
	if outcome != nil && outcome.Hash != "" {
		fmt.Println("tx hash:", outcome.Hash)
	}
	if outcome != nil {
		fmt.Println("state:", outcome.State)
	}
	if err != nil {
		fmt.Println("kind:", color.RedString(chain.KindName(err)))
		return
	}
	fmt.Printf("%v: %v\n", outcome.Op, color.GreenString(outcome.Value.String()))
}
