package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/finbook/finbook/renderer"
)

type transferCmd struct {
	from     string
	to       string
	amount   string
	category string
	note     string
	date     string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move money between two accounts" }
func (*transferCmd) Usage() string {
	return `fbk transfer -from <ref> -to <ref> -amount <n> [-cat <category>] [-note <text>] [-date <yyyy-mm-dd>]

  Creates the two legs of a transfer and applies both balance changes.
`
}

func (p *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.from, "from", "", "Source account id or name.")
	f.StringVar(&p.to, "to", "", "Destination account id or name.")
	f.StringVar(&p.amount, "amount", "", "Amount, as a positive decimal.")
	f.StringVar(&p.category, "cat", "transfer", "Category name.")
	f.StringVar(&p.note, "note", "", "Optional note.")
	f.StringVar(&p.date, "date", "", "Event date (defaults to today).")
}

func (p *transferCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(p.amount)
	if err != nil {
		return fail(fmt.Errorf("invalid amount %q: %w", p.amount, err))
	}
	ts, err := parseDateFlag(p.date)
	if err != nil {
		return fail(err)
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	from, err := resolveAccount(ctx, app, p.from)
	if err != nil {
		return fail(err)
	}
	to, err := resolveAccount(ctx, app, p.to)
	if err != nil {
		return fail(err)
	}
	if from.Currency != to.Currency {
		return fail(fmt.Errorf("cross-currency transfer %s -> %s is not supported", from.Currency, to.Currency))
	}

	legs, err := app.Ledger.Transfer(ctx, from.ID, to.ID, amount, from.Currency, ts, p.category, p.note)
	if err != nil {
		return fail(err)
	}
	for _, leg := range legs {
		fmt.Println(renderer.Transaction(leg))
	}
	return subcommands.ExitSuccess
}
