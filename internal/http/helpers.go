package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"financas/internal/core"
)

// parseFilter extracts the report filter from query parameters. An
// unparseable month is treated as absent rather than an error; the
// report then shows everything.
func parseFilter(r *http.Request) core.Filter {
	f := core.Filter{
		Bank: strings.TrimSpace(r.URL.Query().Get("bank")),
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if ym, err := core.ParseYearMonth(v); err == nil {
			f.Month = ym
		}
	}
	return f
}

// parseSignedAmount combines an unsigned decimal amount with a
// direction field: "saida" flips the sign, anything else (including
// the form default "entrada") keeps it positive.
func parseSignedAmount(amountStr, direction string) (core.Money, error) {
	cents, err := core.ParseSignedDecimalToCents(amountStr)
	if err != nil {
		return core.Money{}, err
	}
	if cents < 0 {
		cents = -cents
	}
	if strings.TrimSpace(direction) == "saida" {
		cents = -cents
	}
	return core.Money{Cents: cents}, nil
}

// parseTransactionForm builds a transaction from the posted form.
func parseTransactionForm(r *http.Request) (core.Transaction, error) {
	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("data inválida: %w", err)
	}
	amount, err := parseSignedAmount(strings.TrimSpace(r.Form.Get("amount")), r.Form.Get("direction"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("valor inválido: %w", err)
	}

	t := core.Transaction{
		Date:     date,
		Amount:   amount,
		Category: sanitizeInput(r.Form.Get("category")),
		Bank:     sanitizeInput(r.Form.Get("bank")),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// displayDate renders a date the way the views show it, day first.
func displayDate(d core.Date) string {
	return d.Format("02/01/2006")
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	return "req_" + uuid.NewString()
}
