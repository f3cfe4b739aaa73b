package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type rmCmd struct {
	id string
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a transaction, reversing its balance effect" }
func (*rmCmd) Usage() string {
	return `fbk rm -id <id>

  Deletes the transaction and reverses its effect on the account balance.
  Deleting a template also deletes every occurrence materialized from it.
  An unknown id is a no-op.
`
}

func (p *rmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "Transaction id.")
}

func (p *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.id == "" {
		return fail(fmt.Errorf("-id is required"))
	}
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	if err := app.Ledger.Delete(ctx, p.id); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
