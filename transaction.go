package finbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are persisted as bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// TxType identifies the kind of a transaction.
type TxType string

const (
	Income   TxType = "income"
	Expense  TxType = "expense"
	Transfer TxType = "transfer"
)

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	case "transfer":
		return Transfer, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one row of the ledger.
//
// A transaction with Recurrent set is a template: it never affects a balance
// and only serves as the pattern from which concrete occurrences are
// materialized (those carry the template's id in ParentID).
//
// The JSON layout below is the persisted wire format. TS is the event time in
// epoch milliseconds, not the insertion time. Income and expense store the
// amount as a magnitude; transfer legs store a matched positive/negative pair.
type Transaction struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	AccountTo  string          `json:"accountTo,omitempty"`
	Type       TxType          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Category   string          `json:"category"`
	Note       string          `json:"note,omitempty"`
	TS         int64           `json:"ts"`
	Recurrent  bool            `json:"recurrent,omitempty"`
	Frequency  string          `json:"frequency,omitempty"`
	ParentID   string          `json:"parentId,omitempty"`
	Attachment string          `json:"attachment,omitempty"`
}

// Time returns the event time as a UTC time.Time.
func (t Transaction) Time() time.Time { return time.UnixMilli(t.TS).UTC() }

// When formats the event time as an ISO-8601 date.
func (t Transaction) When() string { return t.Time().Format("2006-01-02") }

// IsTemplate reports whether the transaction is a recurrence template.
func (t Transaction) IsTemplate() bool { return t.Recurrent }

// SignedAmount returns the balance-affecting value of the transaction:
// positive for income, negative for expense, and the amount as stored for a
// transfer leg (legs are created already signed).
func (t Transaction) SignedAmount() decimal.Decimal {
	switch t.Type {
	case Income:
		return t.Amount.Abs()
	case Expense:
		return t.Amount.Abs().Neg()
	default:
		return t.Amount
	}
}

// Money returns the signed amount as a Money in the transaction's currency.
func (t Transaction) Money() Money { return M(t.SignedAmount(), t.Currency) }

// Patch holds a partial update of a transaction. Nil fields are left as-is.
type Patch struct {
	AccountID  *string
	AccountTo  *string
	Type       *TxType
	Amount     *decimal.Decimal
	Currency   *string
	Category   *string
	Note       *string
	TS         *int64
	Recurrent  *bool
	Frequency  *string
	Attachment *string
}

func (p Patch) applyTo(tx Transaction) Transaction {
	if p.AccountID != nil {
		tx.AccountID = *p.AccountID
	}
	if p.AccountTo != nil {
		tx.AccountTo = *p.AccountTo
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Currency != nil {
		tx.Currency = *p.Currency
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Note != nil {
		tx.Note = *p.Note
	}
	if p.TS != nil {
		tx.TS = *p.TS
	}
	if p.Recurrent != nil {
		tx.Recurrent = *p.Recurrent
	}
	if p.Frequency != nil {
		tx.Frequency = *p.Frequency
	}
	if p.Attachment != nil {
		tx.Attachment = *p.Attachment
	}
	return tx
}
