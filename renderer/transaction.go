package renderer

import (
	"fmt"
	"strings"

	"github.com/finbook/finbook"
)

// Transaction renders a one-line description of a transaction.
func Transaction(tx finbook.Transaction) string {
	switch tx.Type {
	case finbook.Income:
		return fmt.Sprintf("%s income %s (%s)", tx.When(), tx.Money(), tx.Category)
	case finbook.Expense:
		return fmt.Sprintf("%s expense %s (%s)", tx.When(), tx.Money(), tx.Category)
	case finbook.Transfer:
		return fmt.Sprintf("%s transfer %s %s -> %s", tx.When(), finbook.M(tx.Amount.Abs(), tx.Currency), tx.AccountID, tx.AccountTo)
	default:
		return fmt.Sprintf("%s %s %s", tx.When(), tx.Type, tx.Money())
	}
}

// Transactions renders a page of transactions as a markdown table, followed
// by the paging line.
func Transactions(page finbook.Page, names map[string]string) string {
	var b strings.Builder
	title(&b, "Transactions")

	var t table
	t.header("Date", "Type", "Amount", "Account", "Category", "Note")
	for _, tx := range page.Items {
		account := tx.AccountID
		if n, ok := names[tx.AccountID]; ok {
			account = n
		}
		note := tx.Note
		if tx.Recurrent {
			note = strings.TrimSpace("template:" + tx.Frequency + " " + note)
		}
		t.row(tx.When(), string(tx.Type), tx.Money().SignedString(), account, tx.Category, note)
	}
	b.WriteString(t.String())

	fmt.Fprintf(&b, "\n%d of %d transactions", len(page.Items), page.Total)
	if page.Next != nil {
		fmt.Fprintf(&b, " (next cursor %d)", *page.Next)
	}
	b.WriteString("\n")
	return b.String()
}
