package finbook

import "time"

// recurrenceMarker annotates the note of a materialized occurrence so it is
// recognizable as auto-generated.
const recurrenceMarker = "[recurring]"

type occurrenceKey struct {
	parentID string
	ts       int64
}

// ProjectRecurrences computes which occurrences of each template are due as
// of now and not yet present in txs. It is a pure function over the snapshot
// it is given: nothing is read from or written to storage, and repeated calls
// over the same inputs return the same (eventually empty) result.
//
// For each template the walk starts at the template's own ts and advances by
// the frequency step while the current candidate is strictly before now. The
// advanced candidate is emitted when it is itself strictly before now and no
// transaction with this template as parent already carries that exact ts. The
// walk continues past already-materialized candidates, so it always reaches
// now in one step per elapsed period. A template dated in the future produces
// nothing, and a template whose frequency is missing from freqs, or carries a
// non-positive interval, is skipped silently: one broken template never blocks
// the others.
//
// Emitted occurrences carry the template's data with ts advanced, the
// template flag cleared, the frequency reference cleared, the parent link
// set, and the note annotated. Ids are left empty for the caller to assign.
func ProjectRecurrences(txs []Transaction, freqs map[string]Frequency, now time.Time) []Transaction {
	existing := make(map[occurrenceKey]bool)
	for _, tx := range txs {
		if tx.ParentID != "" {
			existing[occurrenceKey{tx.ParentID, tx.TS}] = true
		}
	}

	var due []Transaction
	for _, tpl := range txs {
		if !tpl.Recurrent || tpl.Frequency == "" {
			continue
		}
		freq, ok := freqs[tpl.Frequency]
		if !ok || freq.Interval <= 0 {
			// A non-advancing frequency would stall the walk below.
			continue
		}
		for cur := tpl.Time(); cur.Before(now); {
			next := freq.Advance(cur)
			if next.Before(now) && !existing[occurrenceKey{tpl.ID, next.UnixMilli()}] {
				due = append(due, materialize(tpl, next))
			}
			cur = next
		}
	}
	return due
}

// materialize copies a template into a concrete occurrence at the given time.
func materialize(tpl Transaction, at time.Time) Transaction {
	occ := tpl
	occ.ID = ""
	occ.TS = at.UnixMilli()
	occ.Recurrent = false
	occ.Frequency = ""
	occ.ParentID = tpl.ID
	if occ.Note == "" {
		occ.Note = recurrenceMarker
	} else {
		occ.Note += " " + recurrenceMarker
	}
	return occ
}
