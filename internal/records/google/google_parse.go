package google

import (
	"fmt"
	"strconv"
	"strings"

	"financas/internal/core"
)

// rowToTransaction converts a values row (id, date, amount, category,
// bank) into a transaction. Amounts use the same decimal forms the UI
// accepts, so a hand-edited "12,34" parses the same as an exported
// "12.34".
func rowToTransaction(row []string) (core.Transaction, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(safeGet(row, 0)), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse id %q: %w", safeGet(row, 0), err)
	}
	date, err := core.ParseDate(strings.TrimSpace(safeGet(row, 1)))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", safeGet(row, 1), err)
	}
	cents, err := core.ParseSignedDecimalToCents(safeGet(row, 2))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", safeGet(row, 2), err)
	}
	t := core.Transaction{
		ID:       id,
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Category: strings.TrimSpace(safeGet(row, 3)),
		Bank:     strings.TrimSpace(safeGet(row, 4)),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func transactionToRow(id int64, t core.Transaction) []any {
	return []any{
		strconv.FormatInt(id, 10),
		t.Date.ISO(),
		centsToDecimal(t.Amount.Cents),
		t.Category,
		t.Bank,
	}
}

// centsToDecimal renders a signed cent amount as a dot-decimal string,
// e.g. -2000 -> "-20.00".
func centsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
