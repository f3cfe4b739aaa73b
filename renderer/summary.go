package renderer

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finbook/finbook"
)

// Accounts renders the account list with cached balances.
func Accounts(accounts []finbook.Account) string {
	var b strings.Builder
	title(&b, "Accounts")

	var t table
	t.header("Name", "Type", "Balance", "Created")
	for _, a := range accounts {
		t.row(a.Name, string(a.Type), a.Money().String(), a.Created().Format("2006-01-02"))
	}
	b.WriteString(t.String())
	return b.String()
}

// BudgetLine is one category's budget against its actual spend.
type BudgetLine struct {
	Category string
	Limit    finbook.Money
	Spent    finbook.Money
}

// Over reports whether spending exceeded the limit.
func (l BudgetLine) Over() bool {
	return l.Spent.Amount().Abs().GreaterThan(l.Limit.Amount())
}

// BudgetReport renders the monthly budget report.
func BudgetReport(month string, lines []BudgetLine) string {
	var b strings.Builder
	title(&b, "Budgets %s", month)

	var t table
	t.header("Category", "Limit", "Spent", "Status")
	for _, l := range lines {
		status := "ok"
		if l.Over() {
			status = "**over**"
		}
		t.row(l.Category, l.Limit.String(), l.Spent.String(), status)
	}
	b.WriteString(t.String())
	return b.String()
}

// Summary renders per-account balances and the month's spend per category.
// When total is non-zero it is shown as a converted grand total.
func Summary(accounts []finbook.Account, spend map[string]finbook.Money, total finbook.Money) string {
	var b strings.Builder
	title(&b, "Summary")
	b.WriteString(Accounts(accounts)[len("# Accounts\n\n"):])

	if len(spend) > 0 {
		section(&b, "This month by category")
		var t table
		t.header("Category", "Spent")
		for _, category := range sortedKeys(spend) {
			t.row(category, spend[category].String())
		}
		b.WriteString(t.String())
	}

	if !total.Amount().Equal(decimal.Zero) {
		section(&b, "Total (%s)", total.Currency())
		b.WriteString(total.String() + "\n")
	}
	return b.String()
}

func sortedKeys(m map[string]finbook.Money) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
