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

type editCmd struct {
	typ    string
	amount string
	date   string
	memo   string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a recorded transaction" }
func (*editCmd) Usage() string {
	return `edit [-t <type>] [-a <amount>] [-d <date>] [-m <description>] <id>

  Replaces the fields given as flags on the transaction <id>, any unique
  prefix of the id is accepted. Other fields, the id and the position of
  the transaction in the ledger are kept.

`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "t", "", "New type: income, expense or pending")
	f.StringVar(&c.amount, "a", "", "New amount, a non-negative decimal number")
	f.StringVar(&c.date, "d", "", "New date")
	f.StringVar(&c.memo, "m", "", "New description")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: edit takes exactly one transaction id.")
		return subcommands.ExitUsageError
	}
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if len(set) == 0 {
		fmt.Fprintln(os.Stderr, "Error: nothing to change, use at least one of -t, -a, -d or -m.")
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
	old, _ := ledger.Transaction(id)

	typ, description, amount, on := old.Type, old.Description, old.Amount.String(), old.Date
	if set["t"] {
		if typ, err = cashbook.ParseType(c.typ); err != nil {
			return exitStatus(err)
		}
	}
	if set["a"] {
		amount = c.amount
	}
	if set["m"] {
		description = c.memo
	}
	if set["d"] {
		if on, err = parseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	tx, err := ledger.Update(ctx, id, on, typ, description, amount)
	if err != nil {
		return exitStatus(err)
	}
	fmt.Printf("Updated %s %s %q, balance is now %s\n",
		renderer.ShortID(tx.ID), renderer.Amount(tx, displayCurrency()), tx.Description,
		cashbook.M(ledger.Balance(), displayCurrency()))
	return subcommands.ExitSuccess
}
