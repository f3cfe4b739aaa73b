package finbook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// weeklyTemplate builds a weekly template dated a little over two weeks before
// testNow, so exactly two occurrences are due.
func weeklyTemplate(amount float64) Transaction {
	return Transaction{
		ID:        "tpl-1",
		AccountID: "A",
		Type:      Expense,
		Amount:    decimal.NewFromFloat(amount),
		Currency:  "USD",
		Category:  "rent",
		Note:      "flat 3b",
		Recurrent: true,
		Frequency: "weekly",
		TS:        testNow.AddDate(0, 0, -14).Add(-time.Hour).UnixMilli(),
	}
}

func weeklyFreqs() map[string]Frequency {
	return map[string]Frequency{
		"weekly": {Name: "weekly", Interval: 1, Unit: Weeks},
	}
}

func TestProjectWeeklyTemplate(t *testing.T) {
	tpl := weeklyTemplate(20)
	due := ProjectRecurrences([]Transaction{tpl}, weeklyFreqs(), testNow)
	if len(due) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(due))
	}

	for i, occ := range due {
		wantTS := tpl.Time().AddDate(0, 0, 7*(i+1)).UnixMilli()
		if occ.TS != wantTS {
			t.Errorf("occurrence %d at ts %d, want %d", i, occ.TS, wantTS)
		}
		if occ.Recurrent || occ.Frequency != "" {
			t.Errorf("occurrence %d still flagged as a template", i)
		}
		if occ.ParentID != tpl.ID {
			t.Errorf("occurrence %d parent = %q, want %q", i, occ.ParentID, tpl.ID)
		}
		if occ.ID != "" {
			t.Errorf("occurrence %d carries a pre-assigned id", i)
		}
		if !strings.Contains(occ.Note, recurrenceMarker) {
			t.Errorf("occurrence %d note %q lacks the marker", i, occ.Note)
		}
		if !occ.Amount.Equal(tpl.Amount) || occ.Category != tpl.Category || occ.AccountID != tpl.AccountID {
			t.Errorf("occurrence %d does not carry the template data: %+v", i, occ)
		}
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	tpl := weeklyTemplate(20)
	freqs := weeklyFreqs()

	first := ProjectRecurrences([]Transaction{tpl}, freqs, testNow)
	if len(first) != 2 {
		t.Fatalf("first pass: got %d, want 2", len(first))
	}

	txs := append([]Transaction{tpl}, first...)
	if again := ProjectRecurrences(txs, freqs, testNow); len(again) != 0 {
		t.Errorf("second pass over materialized occurrences produced %d, want 0", len(again))
	}
}

func TestProjectSkipsPartiallyMaterialized(t *testing.T) {
	tpl := weeklyTemplate(20)
	freqs := weeklyFreqs()

	first := ProjectRecurrences([]Transaction{tpl}, freqs, testNow)
	// Keep only the first occurrence; the walk must still find the second.
	txs := []Transaction{tpl, first[0]}
	rest := ProjectRecurrences(txs, freqs, testNow)
	if len(rest) != 1 || rest[0].TS != first[1].TS {
		t.Fatalf("got %d occurrences, want exactly the missing one at %d", len(rest), first[1].TS)
	}
}

func TestProjectFutureTemplate(t *testing.T) {
	tpl := weeklyTemplate(20)
	tpl.TS = testNow.AddDate(0, 0, 3).UnixMilli()
	if due := ProjectRecurrences([]Transaction{tpl}, weeklyFreqs(), testNow); len(due) != 0 {
		t.Errorf("future template produced %d occurrences, want 0", len(due))
	}
}

func TestProjectMissingFrequencySkipped(t *testing.T) {
	broken := weeklyTemplate(20)
	broken.ID = "tpl-broken"
	broken.Frequency = "fortnightly" // not in the map

	healthy := weeklyTemplate(5)
	healthy.ID = "tpl-ok"

	due := ProjectRecurrences([]Transaction{broken, healthy}, weeklyFreqs(), testNow)
	if len(due) != 2 {
		t.Fatalf("got %d occurrences, want 2 from the healthy template only", len(due))
	}
	for _, occ := range due {
		if occ.ParentID != "tpl-ok" {
			t.Errorf("occurrence parented to %q, want tpl-ok", occ.ParentID)
		}
	}
}

func TestProjectNonPositiveIntervalSkipped(t *testing.T) {
	// A frequency document written without an interval unmarshals to 0 and
	// would never advance the walk; such templates must be skipped like one
	// with a missing frequency.
	stalled := weeklyTemplate(20)
	stalled.ID = "tpl-stalled"
	stalled.Frequency = "broken"

	healthy := weeklyTemplate(5)
	healthy.ID = "tpl-ok"

	freqs := weeklyFreqs()
	freqs["broken"] = Frequency{Name: "broken", Interval: 0, Unit: Weeks}

	done := make(chan []Transaction, 1)
	go func() {
		done <- ProjectRecurrences([]Transaction{stalled, healthy}, freqs, testNow)
	}()

	select {
	case due := <-done:
		if len(due) != 2 {
			t.Fatalf("got %d occurrences, want 2 from the healthy template only", len(due))
		}
		for _, occ := range due {
			if occ.ParentID != "tpl-ok" {
				t.Errorf("occurrence parented to %q, want tpl-ok", occ.ParentID)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("projection did not return: non-advancing frequency stalls the walk")
	}
}

func TestProjectMonthlyAdvance(t *testing.T) {
	tpl := weeklyTemplate(100)
	tpl.Frequency = "monthly"
	tpl.TS = testNow.AddDate(0, -2, 0).Add(-time.Hour).UnixMilli()
	freqs := map[string]Frequency{
		"monthly": {Name: "monthly", Interval: 1, Unit: Months},
	}
	due := ProjectRecurrences([]Transaction{tpl}, freqs, testNow)
	if len(due) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(due))
	}
	want := tpl.Time().AddDate(0, 1, 0).UnixMilli()
	if due[0].TS != want {
		t.Errorf("first occurrence at %d, want %d", due[0].TS, want)
	}
}

func TestGenerateRecurrents(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.account(t, "A", "USD", 100)

	tpl := weeklyTemplate(10)
	tpl.ID = ""
	if _, err := fx.ledger.BulkAdd(ctx, []Transaction{tpl}); err != nil {
		t.Fatal(err)
	}
	fx.expectBalance(t, "A", 100)

	generated := fx.ledger.GenerateRecurrents(ctx)
	if len(generated) != 2 {
		t.Fatalf("generated %d occurrences, want 2", len(generated))
	}
	fx.expectBalance(t, "A", 80)

	if again := fx.ledger.GenerateRecurrents(ctx); len(again) != 0 {
		t.Errorf("second run generated %d, want 0", len(again))
	}
	fx.expectBalance(t, "A", 80)
}

// failingFreqs always errors, standing in for an unreadable frequency store.
type failingFreqs struct{}

func (failingFreqs) ByName(context.Context, string) (Frequency, error) {
	return Frequency{}, errors.New("boom")
}
func (failingFreqs) List(context.Context) ([]Frequency, error) {
	return nil, errors.New("boom")
}

func TestGenerateRecurrentsDegradesToEmpty(t *testing.T) {
	fx := newFixture(t)
	broken := NewLedger(fx.kv, fx.accounts, failingFreqs{},
		WithClock(func() time.Time { return testNow }),
	)
	if generated := broken.GenerateRecurrents(context.Background()); generated != nil {
		t.Errorf("got %d generated rows from a broken frequency store, want none", len(generated))
	}
}
