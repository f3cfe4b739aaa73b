package finbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finbook/finbook/store"
)

// Key prefixes for the registries. Each account, frequency, and budget lives
// under its own key, so two accounts can be mutated independently.
const (
	accountPrefix   = "account:"
	frequencyPrefix = "frequency:"
	budgetPrefix    = "budget:"
	categoriesKey   = "categories"
)

func accountKey(id string) string     { return accountPrefix + id }
func frequencyKey(name string) string { return frequencyPrefix + name }
func budgetKey(id string) string      { return budgetPrefix + id }

// AccountRegistry stores one balance-bearing record per account. It performs
// no business logic: every balance change it applies was precomputed by the
// Ledger.
type AccountRegistry struct {
	kv store.KV
}

// NewAccountRegistry creates a registry over kv.
func NewAccountRegistry(kv store.KV) *AccountRegistry {
	return &AccountRegistry{kv: kv}
}

// Create stores a new account with the given opening balance and returns it
// with a freshly assigned id (unless one was provided).
func (r *AccountRegistry) Create(ctx context.Context, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	if err := r.kv.Put(ctx, accountKey(a.ID), a); err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// Get returns the account with the given id, or store.ErrNotFound.
func (r *AccountRegistry) Get(ctx context.Context, id string) (Account, error) {
	var a Account
	if err := r.kv.Get(ctx, accountKey(id), &a); err != nil {
		return Account{}, fmt.Errorf("account %s: %w", id, err)
	}
	return a, nil
}

// List returns all accounts sorted by name.
func (r *AccountRegistry) List(ctx context.Context) ([]Account, error) {
	keys, err := r.kv.Keys(ctx, accountPrefix)
	if err != nil {
		return nil, err
	}
	accounts := make([]Account, 0, len(keys))
	for _, k := range keys {
		var a Account
		if err := r.kv.Get(ctx, k, &a); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // deleted between Keys and Get
			}
			return nil, err
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// Apply adds delta to the cached balance of the account, as a single-key
// read-modify-write. It fails with store.ErrNotFound for an unknown account.
func (r *AccountRegistry) Apply(ctx context.Context, id string, delta decimal.Decimal) error {
	return r.kv.Mutate(ctx, accountKey(id), func(raw []byte) ([]byte, error) {
		if raw == nil {
			return nil, fmt.Errorf("account %s: %w", id, store.ErrNotFound)
		}
		var a Account
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
		a.Balance = a.Balance.Add(delta)
		return json.Marshal(a)
	})
}

// Delete removes the account record. Transactions referencing it are left in
// place; the ledger has no cascading account deletion.
func (r *AccountRegistry) Delete(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, accountKey(id))
}

// FrequencyRegistry stores the frequency reference table, keyed by name.
type FrequencyRegistry struct {
	kv store.KV
}

// NewFrequencyRegistry creates a registry over kv.
func NewFrequencyRegistry(kv store.KV) *FrequencyRegistry {
	return &FrequencyRegistry{kv: kv}
}

// Seed stores the default frequencies, keeping any existing row.
func (r *FrequencyRegistry) Seed(ctx context.Context) error {
	for _, f := range DefaultFrequencies() {
		err := r.kv.Mutate(ctx, frequencyKey(f.Name), func(raw []byte) ([]byte, error) {
			if raw != nil {
				return raw, nil
			}
			return json.Marshal(f)
		})
		if err != nil {
			return fmt.Errorf("seed frequency %s: %w", f.Name, err)
		}
	}
	return nil
}

// Put stores a frequency under its name.
func (r *FrequencyRegistry) Put(ctx context.Context, f Frequency) error {
	if f.Name == "" {
		return errors.New("frequency name is required")
	}
	if f.Interval <= 0 {
		return fmt.Errorf("frequency %s: interval must be positive", f.Name)
	}
	if f.ID == "" {
		f.ID = f.Name
	}
	return r.kv.Put(ctx, frequencyKey(f.Name), f)
}

// ByName returns the frequency with the given name, or store.ErrNotFound.
func (r *FrequencyRegistry) ByName(ctx context.Context, name string) (Frequency, error) {
	var f Frequency
	if err := r.kv.Get(ctx, frequencyKey(name), &f); err != nil {
		return Frequency{}, fmt.Errorf("frequency %s: %w", name, err)
	}
	return f, nil
}

// List returns all frequencies sorted by name.
func (r *FrequencyRegistry) List(ctx context.Context) ([]Frequency, error) {
	keys, err := r.kv.Keys(ctx, frequencyPrefix)
	if err != nil {
		return nil, err
	}
	freqs := make([]Frequency, 0, len(keys))
	for _, k := range keys {
		var f Frequency
		if err := r.kv.Get(ctx, k, &f); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		freqs = append(freqs, f)
	}
	sort.Slice(freqs, func(i, j int) bool { return freqs[i].Name < freqs[j].Name })
	return freqs, nil
}

// Delete removes a frequency. Templates referencing it simply stop
// generating occurrences.
func (r *FrequencyRegistry) Delete(ctx context.Context, name string) error {
	return r.kv.Delete(ctx, frequencyKey(name))
}

// BudgetRegistry stores per-category monthly limits. Read-only with respect
// to the ledger.
type BudgetRegistry struct {
	kv store.KV
}

// NewBudgetRegistry creates a registry over kv.
func NewBudgetRegistry(kv store.KV) *BudgetRegistry {
	return &BudgetRegistry{kv: kv}
}

// Set stores a budget, assigning an id when absent.
func (r *BudgetRegistry) Set(ctx context.Context, b Budget) (Budget, error) {
	if b.Category == "" {
		return Budget{}, errors.New("budget category is required")
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := r.kv.Put(ctx, budgetKey(b.ID), b); err != nil {
		return Budget{}, fmt.Errorf("set budget: %w", err)
	}
	return b, nil
}

// ForMonth returns all budgets whose month equals the given start-of-month
// timestamp, sorted by category.
func (r *BudgetRegistry) ForMonth(ctx context.Context, month int64) ([]Budget, error) {
	keys, err := r.kv.Keys(ctx, budgetPrefix)
	if err != nil {
		return nil, err
	}
	var budgets []Budget
	for _, k := range keys {
		var b Budget
		if err := r.kv.Get(ctx, k, &b); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if b.Month == month {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

// Delete removes a budget.
func (r *BudgetRegistry) Delete(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, budgetKey(id))
}

// Categories is the flat list of category names, stored under a single key
// since it is only ever read and replaced as a whole.
type Categories struct {
	kv store.KV
}

// NewCategories creates the category list over kv.
func NewCategories(kv store.KV) *Categories {
	return &Categories{kv: kv}
}

// All returns the category names, sorted. An absent key is an empty list.
func (c *Categories) All(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.kv.Get(ctx, categoriesKey, &names); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Add inserts a category name if not already present.
func (c *Categories) Add(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("category name is required")
	}
	return c.kv.Mutate(ctx, categoriesKey, func(raw []byte) ([]byte, error) {
		var names []string
		if raw != nil {
			if err := json.Unmarshal(raw, &names); err != nil {
				return nil, err
			}
		}
		for _, n := range names {
			if n == name {
				return raw, nil
			}
		}
		names = append(names, name)
		sort.Strings(names)
		return json.Marshal(names)
	})
}
