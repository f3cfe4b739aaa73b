package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/finbook/finbook/renderer"
)

type recurCmd struct{}

func (*recurCmd) Name() string     { return "recur" }
func (*recurCmd) Synopsis() string { return "materialize due recurring transactions" }
func (*recurCmd) Usage() string {
	return `fbk recur

  Walks every recurrence template forward to today and inserts the
  occurrences that are due and not yet present. Safe to run repeatedly:
  a second run generates nothing new.
`
}

func (*recurCmd) SetFlags(f *flag.FlagSet) {}

func (p *recurCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	generated := app.Ledger.GenerateRecurrents(ctx)
	if len(generated) == 0 {
		fmt.Println("Nothing due.")
		return subcommands.ExitSuccess
	}
	for _, tx := range generated {
		fmt.Println(renderer.Transaction(tx))
	}
	fmt.Printf("Materialized %d transactions\n", len(generated))
	return subcommands.ExitSuccess
}
