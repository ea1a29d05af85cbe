package core

type (
	// BankBalance accumulates a single bank's money movement. Outflows keep
	// their negative sign, so Current is a plain sum.
	BankBalance struct {
		Opening  Money
		Inflows  Money
		Outflows Money
	}

	// Rollup is the full balance picture: one entry per bank name seen in
	// either the bank list or the transaction list, plus grand totals.
	Rollup struct {
		Banks            map[string]BankBalance
		TotalInflows     Money
		TotalOutflows    Money
		AvailableBalance Money
	}
)

// Current returns the bank's balance after all tracked movement.
func (b BankBalance) Current() Money {
	return b.Opening.Add(b.Inflows).Add(b.Outflows)
}

// RollupBalances computes per-bank balances and grand totals from complete
// snapshots of banks and transactions.
//
// Every bank seeds an entry with its opening balance even with no activity.
// A transaction naming an unknown bank synthesizes an entry with zero
// opening balance: dangling references degrade gracefully, they are never
// dropped from totals. Summation is commutative, so input order does not
// matter.
func RollupBalances(banks []Bank, transactions []Transaction) Rollup {
	r := Rollup{Banks: make(map[string]BankBalance, len(banks))}

	var openingTotal Money
	for _, b := range banks {
		r.Banks[b.Name] = BankBalance{Opening: b.OpeningBalance}
		openingTotal = openingTotal.Add(b.OpeningBalance)
	}

	for _, t := range transactions {
		entry := r.Banks[t.Bank] // zero value seeds a dangling reference
		if t.Amount.IsInflow() {
			entry.Inflows = entry.Inflows.Add(t.Amount)
			r.TotalInflows = r.TotalInflows.Add(t.Amount)
		} else {
			entry.Outflows = entry.Outflows.Add(t.Amount)
			r.TotalOutflows = r.TotalOutflows.Add(t.Amount)
		}
		r.Banks[t.Bank] = entry
	}

	r.AvailableBalance = openingTotal.Add(r.TotalInflows).Add(r.TotalOutflows)
	return r
}
