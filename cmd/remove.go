package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cashbook"
	"github.com/etnz/cashbook/renderer"
	"github.com/google/subcommands"
)

type removeCmd struct{}

func (*removeCmd) Name() string     { return "rm" }
func (*removeCmd) Synopsis() string { return "delete transactions" }
func (*removeCmd) Usage() string {
	return `rm <id>...

  Deletes the transactions, any unique prefix of an id is accepted.

`
}

func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (*removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: rm takes at least one transaction id.")
		return subcommands.ExitUsageError
	}

	ledger, release, err := openLedger(ctx)
	if err != nil {
		return exitStatus(err)
	}
	defer release()

	for _, prefix := range f.Args() {
		id, err := resolveID(ledger, prefix)
		if err != nil {
			return exitStatus(err)
		}
		tx, err := ledger.Remove(ctx, id)
		if err != nil {
			return exitStatus(err)
		}
		fmt.Printf("Removed %s %s %q\n", renderer.ShortID(tx.ID), renderer.Amount(tx, displayCurrency()), tx.Description)
	}
	fmt.Printf("Balance is now %s\n", cashbook.M(ledger.Balance(), displayCurrency()))
	return subcommands.ExitSuccess
}
