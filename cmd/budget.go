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

type budgetCmd struct {
	set     string
	limit   string
	month   string
	account string
}

func (*budgetCmd) Name() string     { return "budget" }
func (*budgetCmd) Synopsis() string { return "set a monthly category limit or show the budget report" }
func (*budgetCmd) Usage() string {
	return `fbk budget [-set <category> -limit <n>] [-month <yyyy-mm>] [-account <ref>]

  Without -set, renders the month's budgets against actual spend. With -set,
  stores (or replaces) the category's limit for the month.
`
}

func (p *budgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.set, "set", "", "Category to set a limit for.")
	f.StringVar(&p.limit, "limit", "", "Monthly limit for -set.")
	f.StringVar(&p.month, "month", "", "Month (defaults to the current one).")
	f.StringVar(&p.account, "account", "", "Restrict the limit to one account.")
}

func (p *budgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	month, label, err := parseMonthFlag(p.month)
	if err != nil {
		return fail(err)
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	if p.set != "" {
		limit, err := decimal.NewFromString(p.limit)
		if err != nil {
			return fail(fmt.Errorf("invalid limit %q: %w", p.limit, err))
		}
		b := finbook.Budget{Month: month, Category: p.set, Limit: limit}
		if p.account != "" {
			account, err := resolveAccount(ctx, app, p.account)
			if err != nil {
				return fail(err)
			}
			b.AccountID = account.ID
		}
		if _, err := app.Budgets.Set(ctx, b); err != nil {
			return fail(err)
		}
		fmt.Printf("Budget for %s in %s set to %s\n", p.set, label, p.limit)
		return subcommands.ExitSuccess
	}

	budgets, err := app.Budgets.ForMonth(ctx, month)
	if err != nil {
		return fail(err)
	}
	lines := make([]renderer.BudgetLine, 0, len(budgets))
	for _, b := range budgets {
		spent, err := categorySpend(ctx, app, b, month)
		if err != nil {
			return fail(err)
		}
		lines = append(lines, renderer.BudgetLine{
			Category: b.Category,
			Limit:    finbook.M(b.Limit, ""),
			Spent:    spent,
		})
	}
	printMarkdown(renderer.BudgetReport(label, lines))
	return subcommands.ExitSuccess
}

// categorySpend sums expense amounts for the budget's category over the
// month, computed by filtering transactions rather than stored.
func categorySpend(ctx context.Context, app *App, b finbook.Budget, month int64) (finbook.Money, error) {
	start := time.UnixMilli(month).UTC()
	end := start.AddDate(0, 1, 0).UnixMilli() - 1
	page, err := app.Ledger.List(ctx, 0, 0, finbook.Filter{
		AccountID: b.AccountID,
		Type:      finbook.Expense,
		From:      month,
		To:        end,
		Search:    b.Category,
	})
	if err != nil {
		return finbook.Money{}, err
	}
	var spent finbook.Money
	for _, tx := range page.Items {
		if tx.Recurrent || tx.Category != b.Category {
			continue
		}
		spent = spent.Add(finbook.M(tx.Amount.Abs(), tx.Currency))
	}
	return spent, nil
}

// parseMonthFlag converts a yyyy-mm flag into the canonical start-of-month
// timestamp and a display label; empty means the current month.
func parseMonthFlag(s string) (int64, string, error) {
	if s == "" {
		now := time.Now()
		return finbook.StartOfMonth(now), now.UTC().Format("2006-01"), nil
	}
	t, err := time.ParseInLocation("2006-01", s, time.UTC)
	if err != nil {
		return 0, "", fmt.Errorf("invalid month %q, want yyyy-mm: %w", s, err)
	}
	return t.UnixMilli(), s, nil
}
