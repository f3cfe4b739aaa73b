package finbook

import (
	"context"
	"strings"
)

// Filter restricts a ledger listing. Fields are AND-combined; a zero value
// (or "all" for the string selectors) places no constraint.
type Filter struct {
	AccountID string
	Type      TxType
	// From/To bound the event time, inclusive, in epoch milliseconds.
	// Zero means unbounded on that side.
	From int64
	To   int64
	// Search is matched case-insensitively as a substring of either the
	// category or the note.
	Search string
}

func (f Filter) matches(tx Transaction) bool {
	if f.AccountID != "" && f.AccountID != "all" && tx.AccountID != f.AccountID {
		return false
	}
	if f.Type != "" && f.Type != "all" && tx.Type != f.Type {
		return false
	}
	if f.From != 0 && tx.TS < f.From {
		return false
	}
	if f.To != 0 && tx.TS > f.To {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Category), needle) &&
			!strings.Contains(strings.ToLower(tx.Note), needle) {
			return false
		}
	}
	return true
}

// Page is one slice of a filtered listing.
type Page struct {
	Items []Transaction
	// Total is the number of rows matching the filter, across all pages.
	Total int
	// Next is the cursor of the following page, or nil on the last page.
	Next *int
}

// List returns one page of the ledger matching the filter, in the canonical
// ts-descending order. cursor is the offset of the first row; limit <= 0
// returns everything from the cursor on.
func (l *Ledger) List(ctx context.Context, limit, cursor int, f Filter) (Page, error) {
	txs, err := l.load(ctx)
	if err != nil {
		return Page{}, err
	}
	var matched []Transaction
	for _, tx := range txs {
		if f.matches(tx) {
			matched = append(matched, tx)
		}
	}

	total := len(matched)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > total {
		cursor = total
	}
	end := total
	if limit > 0 && cursor+limit < total {
		end = cursor + limit
	}
	page := Page{Items: matched[cursor:end], Total: total}
	if end < total {
		next := cursor + limit
		page.Next = &next
	}
	return page, nil
}
