// Package main provides a cli to bootstrap a ledger stored on disk and to
// apply transactions to it.
//
//	opcore keygen --save alice.yml
//	opcore genesis --db ledger.db --config genesis.yml
//	opcore submit --db ledger.db --tx payment.yml
//	opcore account --db ledger.db --id <hex>
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"go.dedis.ch/opcore"
	"go.dedis.ch/opcore/cli"
	"go.dedis.ch/opcore/cli/ucli"
	"go.dedis.ch/opcore/core/ledger/command"
	"golang.org/x/xerrors"
)

var builder cli.Builder = ucli.NewBuilder("opcore", nil,
	cli.StringFlag{
		Name:  "log-level",
		Usage: "level of the logs: [trace | debug | info | warn | error]",
		Value: "info",
	},
	cli.BoolFlag{
		Name:  "metrics",
		Usage: "print the metrics when the command is done",
	},
)

var printer io.Writer = os.Stderr

func main() {
	err := run(os.Args, command.NewInitializer())
	if err != nil {
		fmt.Fprintf(printer, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, inits ...cli.Initializer) error {
	for _, init := range inits {
		init.SetCommands(builder)
	}

	builder.SetBefore(setupLogger)
	builder.SetAfter(func(flags cli.Flags) error {
		if !flags.Bool("metrics") {
			return nil
		}

		return writeMetrics(printer)
	})

	app := builder.Build()
	err := app.Run(args)
	if err != nil {
		return err
	}

	return nil
}

func setupLogger(flags cli.Flags) error {
	lvl, err := zerolog.ParseLevel(flags.String("log-level"))
	if err != nil {
		return xerrors.Errorf("invalid log level: %v", err)
	}

	opcore.Logger = opcore.Logger.Level(lvl)

	return nil
}

// writeMetrics gathers the collectors of the module into a fresh registry and
// writes them in the text exposition format.
func writeMetrics(out io.Writer) error {
	registry := prometheus.NewRegistry()

	for _, c := range opcore.PromCollectors {
		err := registry.Register(c)
		if err != nil {
			return xerrors.Errorf("failed to register: %v", err)
		}
	}

	families, err := registry.Gather()
	if err != nil {
		return xerrors.Errorf("failed to gather: %v", err)
	}

	encoder := expfmt.NewEncoder(out, expfmt.FmtText)

	for _, family := range families {
		err = encoder.Encode(family)
		if err != nil {
			return xerrors.Errorf("failed to encode: %v", err)
		}
	}

	return nil
}
