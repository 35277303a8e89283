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

type listCmd struct {
	window int
	more   int
	all    bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display the balance and the most recent transactions" }
func (*listCmd) Usage() string {
	return `list [-n <count>] [-more <pages>] [-all]

  Displays the balance and the most recent transactions, newest first.
  The window starts at -n transactions and every -more page adds ten.

`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.window, "n", cashbook.DefaultWindow, "Number of transactions in the initial window")
	f.IntVar(&c.more, "more", 0, "Number of additional pages to display")
	f.BoolVar(&c.all, "all", false, "Display all transactions")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.window <= 0 || c.more < 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must be positive and -more must not be negative.")
		return subcommands.ExitUsageError
	}

	ledger, release, err := openLedger(ctx, cashbook.WithWindow(c.window))
	if err != nil {
		return exitStatus(err)
	}
	defer release()

	for range c.more {
		ledger.ShowMore()
	}
	if c.all {
		ledger.ExpandVisible(ledger.Len() - ledger.VisibleCount())
	}
	printMarkdown(renderer.Ledger(ledger, displayCurrency()))
	return subcommands.ExitSuccess
}
