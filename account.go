package finbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType identifies the kind of an account.
type AccountType string

const (
	Cash       AccountType = "cash"
	Bank       AccountType = "bank"
	CreditCard AccountType = "credit_card"
)

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return Cash, nil
	case "bank":
		return Bank, nil
	case "credit_card", "credit-card", "cc":
		return CreditCard, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Account is one balance-bearing record.
//
// Balance is a cache maintained incrementally by the Ledger: it always equals
// the account's opening balance plus the sum of signed amounts of all
// non-template transactions whose primary account this is. The registry never
// computes balances itself; it only applies deltas handed to it.
type Account struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt int64           `json:"createdAt"`
}

// Money returns the cached balance as a Money in the account currency.
func (a Account) Money() Money { return M(a.Balance, a.Currency) }

// Created returns the creation time as a UTC time.Time.
func (a Account) Created() time.Time { return time.UnixMilli(a.CreatedAt).UTC() }
