package core

import "testing"

func tx(cents int64, iso, category, bank string) Transaction {
	d, _ := ParseDate(iso)
	return Transaction{Amount: Money{Cents: cents}, Date: d, Category: category, Bank: bank}
}

func TestRollupAlphaScenario(t *testing.T) {
	banks := []Bank{{Name: "Alpha", OpeningBalance: Money{Cents: 10000}}}
	txs := []Transaction{
		tx(5000, "2024-01-05", "Salary", "Alpha"),
		tx(-2000, "2024-01-10", "Food", "Alpha"),
	}

	r := RollupBalances(banks, txs)

	alpha, ok := r.Banks["Alpha"]
	if !ok {
		t.Fatalf("missing Alpha entry")
	}
	if alpha.Opening.Cents != 10000 || alpha.Inflows.Cents != 5000 || alpha.Outflows.Cents != -2000 {
		t.Fatalf("unexpected Alpha entry: %+v", alpha)
	}
	if alpha.Current().Cents != 13000 {
		t.Fatalf("current = %d, want 13000", alpha.Current().Cents)
	}
	if r.AvailableBalance.Cents != 13000 {
		t.Fatalf("available = %d, want 13000", r.AvailableBalance.Cents)
	}
}

func TestRollupSeedsInactiveBank(t *testing.T) {
	banks := []Bank{{Name: "Dormant", OpeningBalance: Money{Cents: 777}}}

	r := RollupBalances(banks, nil)

	entry, ok := r.Banks["Dormant"]
	if !ok {
		t.Fatalf("bank with no activity must still appear")
	}
	if entry.Current().Cents != 777 {
		t.Fatalf("current = %d, want opening balance 777", entry.Current().Cents)
	}
	if r.AvailableBalance.Cents != 777 {
		t.Fatalf("available = %d, want 777", r.AvailableBalance.Cents)
	}
}

func TestRollupDanglingBankReference(t *testing.T) {
	// "Ghost" appears only in transactions; deletion of a bank that still
	// has transactions must behave exactly like this.
	txs := []Transaction{
		tx(5000, "2024-01-05", "Salary", "Ghost"),
		tx(-2000, "2024-01-10", "Food", "Ghost"),
	}

	r := RollupBalances(nil, txs)

	ghost, ok := r.Banks["Ghost"]
	if !ok {
		t.Fatalf("dangling reference must synthesize an entry")
	}
	if ghost.Opening.Cents != 0 {
		t.Fatalf("synthesized opening = %d, want 0", ghost.Opening.Cents)
	}
	if r.TotalInflows.Cents != 5000 || r.TotalOutflows.Cents != -2000 {
		t.Fatalf("dangling transactions must still contribute to totals: %+v", r)
	}
	if r.AvailableBalance.Cents != 3000 {
		t.Fatalf("available = %d, want 3000", r.AvailableBalance.Cents)
	}
}

func TestRollupConservation(t *testing.T) {
	txs := []Transaction{
		tx(100, "2024-01-01", "a", "A"),
		tx(-30, "2024-01-02", "b", "B"),
		tx(0, "2024-01-03", "c", "C"),
		tx(-70, "2024-02-01", "d", "A"),
		tx(250, "2024-03-09", "e", "D"),
	}

	var direct int64
	for _, x := range txs {
		direct += x.Amount.Cents
	}

	r := RollupBalances(nil, txs)
	if got := r.TotalInflows.Cents + r.TotalOutflows.Cents; got != direct {
		t.Fatalf("conservation violated: inflows+outflows = %d, sum = %d", got, direct)
	}

	s := Summarize(txs)
	if s.Net.Cents != direct {
		t.Fatalf("summary net = %d, want %d", s.Net.Cents, direct)
	}
}

func TestRollupOrderIndependent(t *testing.T) {
	banks := []Bank{{Name: "A", OpeningBalance: Money{Cents: 10}}}
	txs := []Transaction{
		tx(100, "2024-01-01", "x", "A"),
		tx(-40, "2024-01-02", "x", "A"),
		tx(25, "2024-01-03", "x", "B"),
	}
	reversed := []Transaction{txs[2], txs[1], txs[0]}

	a := RollupBalances(banks, txs)
	b := RollupBalances(banks, reversed)

	if a.AvailableBalance != b.AvailableBalance ||
		a.TotalInflows != b.TotalInflows ||
		a.TotalOutflows != b.TotalOutflows {
		t.Fatalf("totals depend on order: %+v vs %+v", a, b)
	}
	for name, entry := range a.Banks {
		if b.Banks[name] != entry {
			t.Fatalf("bank %q depends on order", name)
		}
	}
}
