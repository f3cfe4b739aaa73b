package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/renderer"
)

type addCmd struct {
	typ       string
	amount    string
	account   string
	category  string
	note      string
	date      string
	recurring string
	attach    string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or expense" }
func (*addCmd) Usage() string {
	return `fbk add -type income|expense -amount <n> -account <ref> [-cat <category>] [-note <text>] [-date <yyyy-mm-dd>] [-recurring <frequency>] [-attach <ref>]

  Records a single transaction. With -recurring the row is stored as a
  template: it never affects the balance itself, and occurrences are
  materialized by 'fbk recur'.
`
}

func (p *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.typ, "type", "expense", "Transaction type (income, expense).")
	f.StringVar(&p.amount, "amount", "", "Amount, as a positive decimal.")
	f.StringVar(&p.account, "account", "", "Account id or name.")
	f.StringVar(&p.category, "cat", "", "Category name.")
	f.StringVar(&p.note, "note", "", "Optional note.")
	f.StringVar(&p.date, "date", "", "Event date (defaults to today).")
	f.StringVar(&p.recurring, "recurring", "", "Store as a template with this frequency name.")
	f.StringVar(&p.attach, "attach", "", "Opaque attachment reference.")
}

func (p *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := finbook.ParseTxType(p.typ)
	if err != nil {
		return fail(err)
	}
	if typ == finbook.Transfer {
		return fail(fmt.Errorf("use 'fbk transfer' for transfers"))
	}
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

	account, err := resolveAccount(ctx, app, p.account)
	if err != nil {
		return fail(err)
	}
	if p.recurring != "" {
		if _, err := app.Frequencies.ByName(ctx, p.recurring); err != nil {
			return fail(err)
		}
	}

	tx := finbook.Transaction{
		AccountID:  account.ID,
		Type:       typ,
		Amount:     amount.Abs(),
		Currency:   account.Currency,
		Category:   p.category,
		Note:       p.note,
		TS:         ts,
		Recurrent:  p.recurring != "",
		Frequency:  p.recurring,
		Attachment: p.attach,
	}
	stored, err := app.Ledger.Add(ctx, tx)
	if err != nil {
		return fail(err)
	}
	// Single adds leave balance application to this layer; templates never
	// touch a balance.
	if !stored.Recurrent {
		if err := app.Accounts.Apply(ctx, account.ID, stored.SignedAmount()); err != nil {
			return fail(fmt.Errorf("transaction %s recorded but balance not applied: %w", stored.ID, err))
		}
	}
	if p.category != "" {
		if err := app.Categories.Add(ctx, p.category); err != nil {
			app.Log.Warn().Err(err).Str("category", p.category).Msg("category not remembered")
		}
	}

	fmt.Println(renderer.Transaction(stored))
	return subcommands.ExitSuccess
}

// parseDateFlag converts a yyyy-mm-dd flag to epoch milliseconds; empty means
// now.
func parseDateFlag(s string) (int64, error) {
	if s == "" {
		return time.Now().UnixMilli(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q, want yyyy-mm-dd: %w", s, err)
	}
	return t.UnixMilli(), nil
}
