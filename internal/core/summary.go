package core

// Summary is a pure reduction over any transaction list, filtered or not.
// TotalOutflows stays non-positive; display formatting presents its absolute
// value where the UI calls it "total spent".
type Summary struct {
	TotalInflows  Money
	TotalOutflows Money
	Net           Money
}

// Summarize computes inflow/outflow totals and the net balance. It needs no
// bank or category reference data and yields all zeros on empty input.
func Summarize(transactions []Transaction) Summary {
	var s Summary
	for _, t := range transactions {
		if t.Amount.IsInflow() {
			s.TotalInflows = s.TotalInflows.Add(t.Amount)
		} else {
			s.TotalOutflows = s.TotalOutflows.Add(t.Amount)
		}
	}
	s.Net = s.TotalInflows.Add(s.TotalOutflows)
	return s
}
