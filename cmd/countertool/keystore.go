package main

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/fatih/color"
	"github.com/stellar/go/keypair"
	"github.com/urfave/cli/v2"

	"github.com/anyswap/soroban-counter/cmd/utils"
	"github.com/anyswap/soroban-counter/common"
	"github.com/anyswap/soroban-counter/signer"
)

var (
	lightKDFFlag = &cli.BoolFlag{
		Name:  "lightkdf",
		Usage: "use less secure scrypt parameters",
	}

	keystoreCommand = &cli.Command{
		Name:  "keystore",
		Usage: "manage keystore files",
		Subcommands: []*cli.Command{
			{
				Action:    newKeystore,
				Name:      "new",
				Usage:     "generate a new account into keystore file",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					utils.KeystoreFileFlag,
					utils.PasswordFileFlag,
					lightKDFFlag,
				},
			},
			{
				Action:    showKeystore,
				Name:      "show",
				Usage:     "decrypt keystore file and print the address",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					utils.KeystoreFileFlag,
					utils.PasswordFileFlag,
				},
			},
		},
	}
)

func newKeystore(ctx *cli.Context) error {
	keyfile := ctx.String(utils.KeystoreFileFlag.Name)
	passfile := ctx.String(utils.PasswordFileFlag.Name)
	if keyfile == "" || passfile == "" {
		return fmt.Errorf("must specify --%v and --%v", utils.KeystoreFileFlag.Name, utils.PasswordFileFlag.Name)
	}
	if common.FileExist(keyfile) {
		return fmt.Errorf("keystore file %v already exist", keyfile)
	}
	passdata, err := ioutil.ReadFile(passfile)
	if err != nil {
		return err
	}
	key, err := keypair.Random()
	if err != nil {
		return err
	}
	scryptN, scryptP := signer.StandardScryptN, signer.StandardScryptP
	if ctx.Bool(lightKDFFlag.Name) {
		scryptN, scryptP = signer.LightScryptN, signer.LightScryptP
	}
	keyjson, err := signer.EncryptKey(key, strings.TrimSpace(string(passdata)), scryptN, scryptP)
	if err != nil {
		return err
	}
	if err = ioutil.WriteFile(keyfile, keyjson, 0600); err != nil {
		return err
	}
	fmt.Println("address:", color.GreenString(key.Address()))
	fmt.Println("keystore:", keyfile)
	return nil
}

func showKeystore(ctx *cli.Context) error {
	key, err := signer.LoadKeyStore(ctx.String(utils.KeystoreFileFlag.Name), ctx.String(utils.PasswordFileFlag.Name))
	if err != nil {
		return err
	}
	fmt.Println("address:", color.GreenString(key.Address()))
	return nil
}
