package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cashbook/renderer"
	"github.com/google/subcommands"
)

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display a single transaction" }
func (*showCmd) Usage() string {
	return `show <id>

  Displays every field of a transaction, any unique prefix of the id is accepted.

`
}

func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: show takes exactly one transaction id.")
		return subcommands.ExitUsageError
	}

	ledger, release, err := openLedger(ctx)
	if err != nil {
		return exitStatus(err)
	}
	defer release()

	id, err := resolveID(ledger, f.Arg(0))
	if err != nil {
		return exitStatus(err)
	}
	tx, _ := ledger.Transaction(id)
	printMarkdown(renderer.Transaction(tx, displayCurrency()))
	return subcommands.ExitSuccess
}
