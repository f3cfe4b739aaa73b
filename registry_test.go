package finbook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finbook/finbook/store"
	"github.com/finbook/finbook/store/memstore"
)

func TestAccountRegistryCRUD(t *testing.T) {
	kv := memstore.New()
	reg := NewAccountRegistry(kv)
	ctx := context.Background()

	created, err := reg.Create(ctx, Account{Name: "Checking", Type: Bank, Currency: "USD"})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.CreatedAt == 0 {
		t.Fatalf("create did not assign id/createdAt: %+v", created)
	}

	got, err := reg.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Checking" || !got.Balance.IsZero() {
		t.Errorf("got %+v", got)
	}

	if _, err := reg.Create(ctx, Account{ID: "b", Name: "Savings", Type: Cash, Currency: "USD"}); err != nil {
		t.Fatal(err)
	}
	list, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Checking" || list[1].Name != "Savings" {
		t.Errorf("list = %+v, want Checking then Savings", list)
	}

	if err := reg.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v after delete, want ErrNotFound", err)
	}
}

func TestAccountApplyUnknownAccount(t *testing.T) {
	reg := NewAccountRegistry(memstore.New())
	err := reg.Apply(context.Background(), "ghost", decimal.NewFromInt(1))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestAccountApplyConcurrent(t *testing.T) {
	reg := NewAccountRegistry(memstore.New())
	ctx := context.Background()
	if _, err := reg.Create(ctx, Account{ID: "a", Name: "a", Type: Cash, Currency: "USD"}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reg.Apply(ctx, "a", decimal.NewFromInt(1)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	a, err := reg.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("balance = %s, want 50 (lost increments under contention)", a.Balance)
	}
}

func TestFrequencySeedKeepsExisting(t *testing.T) {
	kv := memstore.New()
	reg := NewFrequencyRegistry(kv)
	ctx := context.Background()

	custom := Frequency{Name: "weekly", Interval: 2, Unit: Weeks}
	if err := reg.Put(ctx, custom); err != nil {
		t.Fatal(err)
	}
	if err := reg.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := reg.ByName(ctx, "weekly")
	if err != nil {
		t.Fatal(err)
	}
	if got.Interval != 2 {
		t.Errorf("seed overwrote an existing frequency: %+v", got)
	}

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != len(DefaultFrequencies()) {
		t.Errorf("got %d frequencies, want %d", len(list), len(DefaultFrequencies()))
	}
}

func TestFrequencyPutValidates(t *testing.T) {
	reg := NewFrequencyRegistry(memstore.New())
	ctx := context.Background()
	if err := reg.Put(ctx, Frequency{Interval: 1, Unit: Days}); err == nil {
		t.Error("nameless frequency accepted")
	}
	if err := reg.Put(ctx, Frequency{Name: "bad", Interval: 0, Unit: Days}); err == nil {
		t.Error("zero interval accepted")
	}
}

func TestBudgetForMonth(t *testing.T) {
	reg := NewBudgetRegistry(memstore.New())
	ctx := context.Background()

	aug := StartOfMonth(testNow)
	jul := StartOfMonth(testNow.AddDate(0, -1, 0))

	for _, b := range []Budget{
		{Category: "groceries", Limit: decimal.NewFromInt(400), Month: aug},
		{Category: "dining", Limit: decimal.NewFromInt(150), Month: aug},
		{Category: "groceries", Limit: decimal.NewFromInt(380), Month: jul},
	} {
		if _, err := reg.Set(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := reg.ForMonth(ctx, aug)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Category != "dining" || got[1].Category != "groceries" {
		t.Errorf("ForMonth = %+v, want dining then groceries", got)
	}
}

func TestCategoriesAddDeduplicates(t *testing.T) {
	cats := NewCategories(memstore.New())
	ctx := context.Background()

	for _, name := range []string{"rent", "groceries", "rent"} {
		if err := cats.Add(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	all, err := cats.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0] != "groceries" || all[1] != "rent" {
		t.Errorf("All = %v", all)
	}
}
