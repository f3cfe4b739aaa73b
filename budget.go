package finbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a per-category monthly spending limit. Budgets are reference
// data: the ledger never reads or writes them, and actual spend is computed
// by filtering transactions at report time, not stored.
type Budget struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId,omitempty"`
	Month     int64           `json:"month"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
}

// MonthStart returns the budget month as a UTC time (first of the month).
func (b Budget) MonthStart() time.Time { return time.UnixMilli(b.Month).UTC() }

// StartOfMonth truncates t to the first instant of its month in UTC,
// expressed in epoch milliseconds, the canonical Budget.Month value.
func StartOfMonth(t time.Time) int64 {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}
