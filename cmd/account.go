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

type accountCmd struct {
	name     string
	typ      string
	currency string
	balance  string
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "create an account" }
func (*accountCmd) Usage() string {
	return `fbk account -name <name> [-type cash|bank|credit_card] [-cur <code>] [-balance <amount>]

  Creates an account with an explicit opening balance.
`
}

func (p *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Account name.")
	f.StringVar(&p.typ, "type", "bank", "Account type (cash, bank, credit_card).")
	f.StringVar(&p.currency, "cur", "USD", "Currency code.")
	f.StringVar(&p.balance, "balance", "0", "Opening balance.")
}

func (p *accountCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.name == "" {
		return fail(fmt.Errorf("-name is required"))
	}
	typ, err := finbook.ParseAccountType(p.typ)
	if err != nil {
		return fail(err)
	}
	balance, err := decimal.NewFromString(p.balance)
	if err != nil {
		return fail(fmt.Errorf("invalid balance %q: %w", p.balance, err))
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	a, err := app.Accounts.Create(ctx, finbook.Account{
		Name:      p.name,
		Type:      typ,
		Currency:  p.currency,
		Balance:   balance,
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created account %s (%s) with balance %s\n", a.Name, a.ID, a.Money())
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string             { return "accounts" }
func (*accountsCmd) Synopsis() string         { return "list accounts with cached balances" }
func (*accountsCmd) Usage() string            { return "fbk accounts\n" }
func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (p *accountsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	accounts, err := app.Accounts.List(ctx)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.Accounts(accounts))
	return subcommands.ExitSuccess
}
