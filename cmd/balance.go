package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/cashbook"
	"github.com/google/subcommands"
)

type balanceCmd struct {
	signed bool
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance" }
func (*balanceCmd) Usage() string {
	return `balance [-signed]

  Prints the sum of incomes minus the sum of expenses, pending transactions
  are not counted.

`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.signed, "signed", false, "Prefix positive balances with +")
}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, release, err := openLedger(ctx)
	if err != nil {
		return exitStatus(err)
	}
	defer release()

	balance := cashbook.M(ledger.Balance(), displayCurrency())
	if c.signed {
		fmt.Println(balance.SignedString())
	} else {
		fmt.Println(balance)
	}
	return subcommands.ExitSuccess
}
