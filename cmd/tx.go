package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/renderer"
)

type txCmd struct {
	account string
	typ     string
	from    string
	to      string
	search  string
	limit   int
	cursor  int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions" }
func (*txCmd) Usage() string {
	return `fbk tx [-account <ref>] [-type income|expense|transfer] [-from <yyyy-mm-dd>] [-to <yyyy-mm-dd>] [-q <text>] [-limit <n>] [-cursor <n>]

  Lists transactions newest first. Filters are combined; -q matches the
  category or note case-insensitively. Paging continues from the cursor
  printed at the bottom of each page.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Only this account ('all' or empty for any).")
	f.StringVar(&p.typ, "type", "", "Only this type ('all' or empty for any).")
	f.StringVar(&p.from, "from", "", "Inclusive start date.")
	f.StringVar(&p.to, "to", "", "Inclusive end date.")
	f.StringVar(&p.search, "q", "", "Substring of category or note.")
	f.IntVar(&p.limit, "limit", 20, "Page size (0 for everything).")
	f.IntVar(&p.cursor, "cursor", 0, "Offset of the first row.")
}

func (p *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	filter := finbook.Filter{Search: p.search}
	if p.account != "" && p.account != "all" {
		account, err := resolveAccount(ctx, app, p.account)
		if err != nil {
			return fail(err)
		}
		filter.AccountID = account.ID
	}
	if p.typ != "" && p.typ != "all" {
		typ, err := finbook.ParseTxType(p.typ)
		if err != nil {
			return fail(err)
		}
		filter.Type = typ
	}
	if p.from != "" {
		ts, err := parseDateFlag(p.from)
		if err != nil {
			return fail(err)
		}
		filter.From = ts
	}
	if p.to != "" {
		ts, err := parseDateFlag(p.to)
		if err != nil {
			return fail(err)
		}
		// Make the end date inclusive for the whole day.
		filter.To = ts + 24*60*60*1000 - 1
	}

	page, err := app.Ledger.List(ctx, p.limit, p.cursor, filter)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.Transactions(page, accountNames(ctx, app)))
	if page.Next != nil {
		fmt.Printf("More: fbk tx -cursor %d\n", *page.Next)
	}
	return subcommands.ExitSuccess
}
