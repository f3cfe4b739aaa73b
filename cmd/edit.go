package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/renderer"
)

type editCmd struct {
	id       string
	amount   string
	account  string
	typ      string
	category string
	note     string
	date     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit a transaction, reconciling balances" }
func (*editCmd) Usage() string {
	return `fbk edit -id <id> [-amount <n>] [-account <ref>] [-type income|expense] [-cat <category>] [-note <text>] [-date <yyyy-mm-dd>]

  Merges the given fields into the transaction. Amount, account, and type
  changes reconcile the affected account balances; edits touching a template
  on either side leave balances alone.
`
}

func (p *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "Transaction id.")
	f.StringVar(&p.amount, "amount", "", "New amount.")
	f.StringVar(&p.account, "account", "", "New account id or name.")
	f.StringVar(&p.typ, "type", "", "New type (income, expense).")
	f.StringVar(&p.category, "cat", "", "New category.")
	f.StringVar(&p.note, "note", "", "New note.")
	f.StringVar(&p.date, "date", "", "New event date.")
}

func (p *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.id == "" {
		return fail(fmt.Errorf("-id is required"))
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	var patch finbook.Patch
	if p.amount != "" {
		amount, err := decimal.NewFromString(p.amount)
		if err != nil {
			return fail(fmt.Errorf("invalid amount %q: %w", p.amount, err))
		}
		patch.Amount = &amount
	}
	if p.account != "" {
		account, err := resolveAccount(ctx, app, p.account)
		if err != nil {
			return fail(err)
		}
		patch.AccountID = &account.ID
	}
	if p.typ != "" {
		typ, err := finbook.ParseTxType(p.typ)
		if err != nil {
			return fail(err)
		}
		patch.Type = &typ
	}
	if p.category != "" {
		patch.Category = &p.category
	}
	if p.note != "" {
		patch.Note = &p.note
	}
	if p.date != "" {
		ts, err := parseDateFlag(p.date)
		if err != nil {
			return fail(err)
		}
		patch.TS = &ts
	}

	merged, err := app.Ledger.Update(ctx, p.id, patch)
	if err != nil {
		return fail(err)
	}
	fmt.Println(renderer.Transaction(merged))
	return subcommands.ExitSuccess
}
