package finbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/finbook/finbook/store"
)

// ErrNotFound indicates an operation referenced a transaction id that is not
// in the ledger.
var ErrNotFound = errors.New("transaction not found")

// ledgerKey is the store key under which the whole transaction collection is
// persisted, as one JSON array sorted by ts descending.
const ledgerKey = "ledger"

// Accounts is the account lookup/mutate capability the ledger consumes. The
// ledger is the sole caller of Apply; the pre-computed delta keeps all money
// logic on this side of the boundary.
type Accounts interface {
	Get(ctx context.Context, id string) (Account, error)
	Apply(ctx context.Context, id string, delta decimal.Decimal) error
}

// Frequencies is the read-only frequency lookup the recurrence pass consumes.
type Frequencies interface {
	ByName(ctx context.Context, name string) (Frequency, error)
	List(ctx context.Context) ([]Frequency, error)
}

// Ledger owns the canonical ordered collection of transactions and is the
// sole writer of account balances.
//
// Each operation reads a snapshot of the collection, computes, and writes the
// affected keys. Mutations to distinct keys within one operation are issued
// concurrently; there is no cross-key transaction, so a failed sibling write
// leaves the store visibly inconsistent (see the package documentation).
// Concurrent callers are not serialized: last write wins on a contended key.
type Ledger struct {
	kv       store.KV
	accounts Accounts
	freqs    Frequencies

	newID func() string
	now   func() time.Time
	log   zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDSource overrides the transaction id generator (default: random UUID).
func WithIDSource(f func() string) Option { return func(l *Ledger) { l.newID = f } }

// WithClock overrides the ledger's notion of "now", used by the recurrence
// pass.
func WithClock(f func() time.Time) Option { return func(l *Ledger) { l.now = f } }

// WithLogger sets the structured logger (default: no-op).
func WithLogger(log zerolog.Logger) Option { return func(l *Ledger) { l.log = log } }

// NewLedger creates a ledger over the given store and collaborators.
func NewLedger(kv store.KV, accounts Accounts, freqs Frequencies, opts ...Option) *Ledger {
	l := &Ledger{
		kv:       kv,
		accounts: accounts,
		freqs:    freqs,
		newID:    uuid.NewString,
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// load reads the current collection snapshot. An absent key is an empty
// ledger.
func (l *Ledger) load(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := l.kv.Get(ctx, ledgerKey, &txs); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return txs, nil
}

// save rewrites the whole collection.
func (l *Ledger) save(ctx context.Context, txs []Transaction) error {
	if err := l.kv.Put(ctx, ledgerKey, txs); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// sortByTS keeps the canonical order: event time descending, newest first.
// The sort is stable so same-instant rows keep their insertion order.
func sortByTS(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].TS > txs[j].TS })
}

// Add appends one transaction and returns it with a freshly assigned id.
//
// Add has no balance side effect: applying the signed amount to the account
// is the caller's responsibility for single adds. Bulk, transfer and
// recurrence paths apply balances internally.
func (l *Ledger) Add(ctx context.Context, tx Transaction) (Transaction, error) {
	txs, err := l.load(ctx)
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = l.newID()
	txs = append(txs, tx)
	sortByTS(txs)
	if err := l.save(ctx, txs); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// BulkAdd appends a batch of transactions, assigning ids, and applies one net
// balance delta per affected account. The per-account mutations and the
// collection rewrite touch disjoint keys and are issued concurrently; the
// operation as a whole is not atomic across keys.
//
// Templates in the batch are stored but excluded from the deltas.
func (l *Ledger) BulkAdd(ctx context.Context, batch []Transaction) ([]Transaction, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	txs, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	// Work on a copy so the caller's slice is untouched if a write fails.
	batch = append([]Transaction(nil), batch...)
	deltas := make(map[string]decimal.Decimal)
	for i := range batch {
		batch[i].ID = l.newID()
		if batch[i].Recurrent {
			continue
		}
		id := batch[i].AccountID
		deltas[id] = deltas[id].Add(batch[i].SignedAmount())
	}
	txs = append(txs, batch...)
	sortByTS(txs)

	g, gctx := errgroup.WithContext(ctx)
	for id, delta := range deltas {
		g.Go(func() error { return l.accounts.Apply(gctx, id, delta) })
	}
	g.Go(func() error { return l.save(gctx, txs) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// Transfer moves amount from one account to another, creating exactly two
// linked legs with opposite signs, the same ts and category, and swapped
// primary/secondary accounts. Balances are applied through the bulk path, so
// the pair always sums to zero.
func (l *Ledger) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, currency string, ts int64, category, note string) ([]Transaction, error) {
	if from == to {
		return nil, fmt.Errorf("transfer: source and destination are the same account %s", from)
	}
	if ts == 0 {
		ts = l.now().UnixMilli()
	}
	amount = amount.Abs()
	out := Transaction{
		AccountID: from,
		AccountTo: to,
		Type:      Transfer,
		Amount:    amount.Neg(),
		Currency:  currency,
		Category:  category,
		Note:      note,
		TS:        ts,
	}
	in := out
	in.AccountID, in.AccountTo = to, from
	in.Amount = amount
	return l.BulkAdd(ctx, []Transaction{out, in})
}

// Update merges the patch into the transaction with the given id and
// reconciles account balances.
//
// When neither the old nor the new state is a template: if the primary
// account changed, the old signed amount is reversed on the old account and
// the new one applied on the new account; if only the signed amount changed,
// the delta is applied to the one account. Templates never touched a balance,
// so an edit involving one on either side skips reconciliation entirely.
// Account mutations complete before the collection is rewritten.
func (l *Ledger) Update(ctx context.Context, id string, patch Patch) (Transaction, error) {
	txs, err := l.load(ctx)
	if err != nil {
		return Transaction{}, err
	}
	at := -1
	for i := range txs {
		if txs[i].ID == id {
			at = i
			break
		}
	}
	if at < 0 {
		return Transaction{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	old := txs[at]
	merged := patch.applyTo(old)
	merged.ID = old.ID

	if !old.Recurrent && !merged.Recurrent {
		oldSigned, newSigned := old.SignedAmount(), merged.SignedAmount()
		g, gctx := errgroup.WithContext(ctx)
		switch {
		case old.AccountID != merged.AccountID:
			g.Go(func() error { return l.accounts.Apply(gctx, old.AccountID, oldSigned.Neg()) })
			g.Go(func() error { return l.accounts.Apply(gctx, merged.AccountID, newSigned) })
		case !oldSigned.Equal(newSigned):
			g.Go(func() error { return l.accounts.Apply(gctx, merged.AccountID, newSigned.Sub(oldSigned)) })
		}
		if err := g.Wait(); err != nil {
			return Transaction{}, err
		}
	}

	txs[at] = merged
	sortByTS(txs)
	if err := l.save(ctx, txs); err != nil {
		return Transaction{}, err
	}
	return merged, nil
}

// Delete removes the transaction with the given id, reversing its balance
// effect. Deleting a template cascades to every materialized child, reversing
// each child's effect exactly once (the template itself never had one).
// An absent id is a silent no-op.
//
// Account reversals and the filtered collection rewrite run concurrently.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	txs, err := l.load(ctx)
	if err != nil {
		return err
	}
	var target *Transaction
	for i := range txs {
		if txs[i].ID == id {
			target = &txs[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	doomed := map[string]bool{id: true}
	if target.Recurrent {
		for i := range txs {
			if txs[i].ParentID == id {
				doomed[txs[i].ID] = true
			}
		}
	}

	deltas := make(map[string]decimal.Decimal)
	remaining := txs[:0]
	for _, tx := range txs {
		if !doomed[tx.ID] {
			remaining = append(remaining, tx)
			continue
		}
		if tx.Recurrent {
			continue // templates never touched a balance
		}
		deltas[tx.AccountID] = deltas[tx.AccountID].Sub(tx.SignedAmount())
	}

	g, gctx := errgroup.WithContext(ctx)
	for accID, delta := range deltas {
		g.Go(func() error { return l.accounts.Apply(gctx, accID, delta) })
	}
	g.Go(func() error { return l.save(gctx, remaining) })
	return g.Wait()
}

// GenerateRecurrents materializes every due occurrence of every template and
// returns the newly created transactions.
//
// Recurrence generation is best effort: any failure while projecting or
// materializing is logged and reported as zero generated, never returned as
// an error. It must not be able to break the rest of the system.
func (l *Ledger) GenerateRecurrents(ctx context.Context) []Transaction {
	txs, err := l.load(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("recurrence generation skipped: ledger unreadable")
		return nil
	}
	freqs, err := l.freqs.List(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("recurrence generation skipped: frequencies unreadable")
		return nil
	}
	byName := make(map[string]Frequency, len(freqs))
	for _, f := range freqs {
		byName[f.Name] = f
	}

	due := ProjectRecurrences(txs, byName, l.now())
	if len(due) == 0 {
		return nil
	}
	added, err := l.BulkAdd(ctx, due)
	if err != nil {
		l.log.Warn().Err(err).Int("due", len(due)).Msg("recurrence materialization failed")
		return nil
	}
	l.log.Info().Int("generated", len(added)).Msg("materialized recurring transactions")
	return added
}
