package core

import "sort"

// Filter narrows a transaction list. Zero values mean "no predicate":
// an empty Bank matches everything, a zero Month likewise.
type Filter struct {
	Bank  string
	Month YearMonth
}

// FilterTransactions returns a new list holding the transactions that match
// every present predicate, sorted descending by date (most recent first).
// The sort is part of the output contract: dashboard and report consumers
// both assume it. The input slice is never mutated; with no predicates the
// result is a fresh copy of the input.
func FilterTransactions(transactions []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Bank != "" && t.Bank != f.Bank {
			continue
		}
		if !f.Month.IsZero() && !f.Month.Contains(t.Date) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
