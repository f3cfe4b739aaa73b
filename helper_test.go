package finbook

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbook/finbook/store"
	"github.com/finbook/finbook/store/memstore"
)

// testNow is the fixed clock all engine tests run against.
var testNow = time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

// countingKV wraps a KV and counts Mutate calls per key.
type countingKV struct {
	store.KV
	mu      sync.Mutex
	mutates map[string]int
}

func newCountingKV() *countingKV {
	return &countingKV{KV: memstore.New(), mutates: make(map[string]int)}
}

func (c *countingKV) Mutate(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	c.mu.Lock()
	c.mutates[key]++
	c.mu.Unlock()
	return c.KV.Mutate(ctx, key, fn)
}

// fixture is a ledger over an in-memory store with a deterministic id
// sequence and a fixed clock.
type fixture struct {
	ledger   *Ledger
	accounts *AccountRegistry
	freqs    *FrequencyRegistry
	kv       *countingKV
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := newCountingKV()
	accounts := NewAccountRegistry(kv)
	freqs := NewFrequencyRegistry(kv)
	if err := freqs.Seed(context.Background()); err != nil {
		t.Fatalf("seeding frequencies: %v", err)
	}

	n := 0
	nextID := func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
	ledger := NewLedger(kv, accounts, freqs,
		WithIDSource(nextID),
		WithClock(func() time.Time { return testNow }),
	)
	return &fixture{ledger: ledger, accounts: accounts, freqs: freqs, kv: kv}
}

// account creates an account with the given opening balance.
func (fx *fixture) account(t *testing.T, id, currency string, opening float64) Account {
	t.Helper()
	a, err := fx.accounts.Create(context.Background(), Account{
		ID:       id,
		Name:     id,
		Type:     Bank,
		Currency: currency,
		Balance:  decimal.NewFromFloat(opening),
	})
	if err != nil {
		t.Fatalf("creating account %s: %v", id, err)
	}
	return a
}

// balance reads the cached balance of an account.
func (fx *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	a, err := fx.accounts.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("reading account %s: %v", id, err)
	}
	return a.Balance
}

// all returns the full collection, newest first.
func (fx *fixture) all(t *testing.T) []Transaction {
	t.Helper()
	page, err := fx.ledger.List(context.Background(), 0, 0, Filter{})
	if err != nil {
		t.Fatalf("listing transactions: %v", err)
	}
	return page.Items
}

// expectBalance fails unless the account's cached balance equals want.
func (fx *fixture) expectBalance(t *testing.T, id string, want float64) {
	t.Helper()
	got := fx.balance(t, id)
	if !got.Equal(decimal.NewFromFloat(want)) {
		t.Errorf("account %s balance = %s, want %v", id, got, want)
	}
}

// tx builds a plain expense/income at an offset (in days) before testNow.
func testTx(account string, typ TxType, amount float64, daysAgo int) Transaction {
	return Transaction{
		AccountID: account,
		Type:      typ,
		Amount:    decimal.NewFromFloat(amount),
		Currency:  "USD",
		Category:  "misc",
		TS:        testNow.AddDate(0, 0, -daysAgo).UnixMilli(),
	}
}
