// Package command defines the cli commands to bootstrap a ledger stored on
// disk and to apply transactions to it.
package command

import (
	"os"

	"go.dedis.ch/opcore/cli"
	"go.dedis.ch/opcore/core/ledger"
	"go.dedis.ch/opcore/core/store/kv"
	"go.dedis.ch/opcore/crypto/ed25519"
)

// Initializer implements the ledger initializer for the CLI.
//
// - implements cli.Initializer
type Initializer struct {
	Params ledger.Params
}

// NewInitializer returns an initializer using the default ledger parameters.
func NewInitializer() Initializer {
	return Initializer{
		Params: ledger.DefaultParams(),
	}
}

// SetCommands implements cli.Initializer.
func (i Initializer) SetCommands(provider cli.Provider) {
	action := action{
		printer: os.Stdout,
		params:  i.Params,

		genSigner: ed25519.NewSigner,
		openDB:    kv.New,
		readFile:  os.ReadFile,
		saveFile:  saveToFile,
	}

	dbFlag := cli.StringFlag{
		Name:     "db",
		Usage:    "path to the database file",
		Required: true,
	}

	keygen := provider.SetCommand("keygen")
	keygen.SetDescription("create a new account key")
	keygen.SetFlags(cli.StringFlag{
		Name:  "save",
		Usage: "if provided, save the key to that file",
	}, cli.BoolFlag{
		Name:  "force",
		Usage: "in the case it saves the key, will overwrite if needed",
	})
	keygen.SetAction(action.keygenAction)

	genesis := provider.SetCommand("genesis")
	genesis.SetDescription("create the initial accounts of the ledger")
	genesis.SetFlags(dbFlag, cli.StringFlag{
		Name:     "config",
		Usage:    "path to the YAML file listing the accounts",
		Required: true,
	})
	genesis.SetAction(action.genesisAction)

	submit := provider.SetCommand("submit")
	submit.SetDescription("apply a batch of transactions to the ledger")
	submit.SetFlags(dbFlag, cli.StringSliceFlag{
		Name:     "tx",
		Usage:    "path to a YAML transaction, can be repeated",
		Required: true,
	}, cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print the results without committing",
	})
	submit.SetAction(action.submitAction)

	check := provider.SetCommand("check")
	check.SetDescription("verify that a transaction could be applied")
	check.SetFlags(dbFlag, cli.StringFlag{
		Name:     "tx",
		Usage:    "path to a YAML transaction",
		Required: true,
	})
	check.SetAction(action.checkAction)

	account := provider.SetCommand("account")
	account.SetDescription("display an account")
	account.SetFlags(dbFlag, cli.StringFlag{
		Name:     "id",
		Usage:    "hexadecimal identifier of the account",
		Required: true,
	})
	account.SetAction(action.accountAction)
}
