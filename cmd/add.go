package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/cashbook"
	"github.com/etnz/cashbook/renderer"
	"github.com/google/subcommands"
)

type addCmd struct {
	typ    string
	amount string
	date   string
	memo   string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a new income, expense or pending transaction" }
func (*addCmd) Usage() string {
	return `add -t <type> -a <amount> [-d <date>] <description>

  Records a new transaction at the top of the ledger and saves it.
  - type: income, expense or pending (case-insensitive).
  - amount: a non-negative decimal number, the sign comes from the type.
  - date: optional, defaults to now. Accepts 2025-08-15, 8-15, -1d, ...
  The description is made of the remaining arguments, or of -m.

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "t", "", "Transaction type: income, expense or pending (required)")
	f.StringVar(&c.amount, "a", "", "Amount, a non-negative decimal number (required)")
	f.StringVar(&c.date, "d", "", "Transaction date (default now)")
	f.StringVar(&c.memo, "m", "", "Description, when not given as arguments")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := cashbook.ParseType(c.typ)
	if err != nil {
		return exitStatus(err)
	}
	if _, err := cashbook.ParseAmount(c.amount); err != nil {
		return exitStatus(err)
	}
	on, err := parseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	description := c.memo
	if f.NArg() > 0 {
		description = strings.Join(f.Args(), " ")
	}

	ledger, release, err := openLedger(ctx)
	if err != nil {
		return exitStatus(err)
	}
	defer release()

	tx, err := ledger.Add(ctx, on, typ, description, c.amount)
	if err != nil {
		return exitStatus(err)
	}
	fmt.Printf("Added %s %s %q, balance is now %s\n",
		renderer.ShortID(tx.ID), renderer.Amount(tx, displayCurrency()), tx.Description,
		cashbook.M(ledger.Balance(), displayCurrency()))
	return subcommands.ExitSuccess
}
