package cmd

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/rates"
	"github.com/finbook/finbook/renderer"
)

type summaryCmd struct {
	convert string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show balances and this month's spend" }
func (*summaryCmd) Usage() string {
	return `fbk summary [-convert <code>]

  Shows every account balance and the current month's spend per category.
  With -convert, also shows the grand total converted into one currency
  using fetched spot rates (best effort).
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.convert, "convert", "", "Currency to convert the grand total into.")
}

func (p *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	accounts, err := app.Accounts.List(ctx)
	if err != nil {
		return fail(err)
	}

	month := finbook.StartOfMonth(time.Now())
	end := time.UnixMilli(month).UTC().AddDate(0, 1, 0).UnixMilli() - 1
	page, err := app.Ledger.List(ctx, 0, 0, finbook.Filter{Type: finbook.Expense, From: month, To: end})
	if err != nil {
		return fail(err)
	}
	spend := make(map[string]finbook.Money)
	for _, tx := range page.Items {
		if tx.Recurrent {
			continue
		}
		spend[tx.Category] = spend[tx.Category].Add(finbook.M(tx.Amount.Abs(), tx.Currency))
	}

	var total finbook.Money
	if p.convert != "" {
		svc := &rates.Service{Client: http.DefaultClient, KV: app.KV}
		sum := decimal.Zero
		for _, a := range accounts {
			rate, err := svc.Rate(ctx, a.Currency, p.convert)
			if err != nil {
				app.Log.Warn().Err(err).Str("currency", a.Currency).Msg("rate unavailable, balance skipped")
				continue
			}
			sum = sum.Add(a.Balance.Mul(decimal.NewFromFloat(rate)))
		}
		total = finbook.M(sum, p.convert)
	}

	printMarkdown(renderer.Summary(accounts, spend, total))
	return subcommands.ExitSuccess
}
