package renderer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finbook/finbook"
)

func TestTransactionOneLiner(t *testing.T) {
	expense := finbook.Transaction{
		Type:     finbook.Expense,
		Amount:   decimal.NewFromInt(40),
		Currency: "USD",
		Category: "groceries",
		TS:       1756641600000, // 2025-08-31
	}
	got := Transaction(expense)
	if !strings.Contains(got, "expense") || !strings.Contains(got, "-$40.00") || !strings.Contains(got, "groceries") {
		t.Errorf("got %q", got)
	}

	transfer := expense
	transfer.Type = finbook.Transfer
	transfer.AccountID = "checking"
	transfer.AccountTo = "savings"
	transfer.Amount = decimal.NewFromInt(-40)
	got = Transaction(transfer)
	if !strings.Contains(got, "checking -> savings") || !strings.Contains(got, "$40.00") {
		t.Errorf("got %q", got)
	}
}

func TestTransactionsTable(t *testing.T) {
	next := 10
	page := finbook.Page{
		Items: []finbook.Transaction{
			{ID: "1", AccountID: "a1", Type: finbook.Income, Amount: decimal.NewFromInt(100), Currency: "USD", Category: "salary", TS: 1756641600000},
			{ID: "2", AccountID: "a1", Type: finbook.Expense, Amount: decimal.NewFromInt(20), Currency: "USD", Category: "rent", Recurrent: true, Frequency: "monthly", TS: 1756641600000},
		},
		Total: 25,
		Next:  &next,
	}
	got := Transactions(page, map[string]string{"a1": "Checking"})

	for _, want := range []string{
		"| Date | Type | Amount | Account | Category | Note |",
		"+$100.00",
		"Checking",
		"template:monthly",
		"2 of 25 transactions (next cursor 10)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestBudgetReportFlagsOverspend(t *testing.T) {
	lines := []BudgetLine{
		{Category: "groceries", Limit: finbook.M(400, "USD"), Spent: finbook.M(-120, "USD")},
		{Category: "dining", Limit: finbook.M(100, "USD"), Spent: finbook.M(-150, "USD")},
	}
	got := BudgetReport("2026-08", lines)
	if !strings.Contains(got, "# Budgets 2026-08") {
		t.Errorf("missing title:\n%s", got)
	}
	if !strings.Contains(got, "| dining | $100.00 | -$150.00 | **over** |") {
		t.Errorf("overspent line not flagged:\n%s", got)
	}
	if strings.Count(got, "**over**") != 1 {
		t.Errorf("within-budget line flagged:\n%s", got)
	}
}

func TestSummaryIncludesConvertedTotal(t *testing.T) {
	accounts := []finbook.Account{
		{Name: "Checking", Type: finbook.Bank, Currency: "USD", Balance: decimal.NewFromInt(60)},
	}
	spend := map[string]finbook.Money{"rent": finbook.M(-900, "USD")}

	got := Summary(accounts, spend, finbook.M(55.2, "EUR"))
	for _, want := range []string{"# Summary", "Checking", "This month by category", "rent", "Total (EUR)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	plain := Summary(accounts, nil, finbook.Money{})
	if strings.Contains(plain, "Total (") {
		t.Errorf("zero total rendered:\n%s", plain)
	}
}
