// Package finbook implements a personal-finance ledger engine: accounts with
// cached balances, a single ordered collection of transactions, budgets, and
// recurring-transaction templates that are periodically materialized into
// concrete transactions.
//
// The engine is the sole writer of account balances. Every mutating operation
// computes the balance delta it implies and applies it to the affected
// accounts through a [store.KV], a per-key read-modify-write primitive with no
// cross-key transactions. Sibling key mutations inside one operation are
// issued concurrently; the engine is deliberately optimistic and does not
// serialize concurrent callers (last write wins on a contended key).
package finbook
