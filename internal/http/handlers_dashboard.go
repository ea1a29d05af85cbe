package http

import (
	"html/template"
	"net/http"
	"sort"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/services"
)

// bankRow is a rendered balance line for one bank.
type bankRow struct {
	Name     string
	Opening  string
	Inflows  string
	Outflows string
	Current  string
	Dangling bool
}

// txRow is a rendered transaction line.
type txRow struct {
	ID       int64
	Date     string
	ISODate  string
	Amount   string
	Outflow  bool
	Category string
	Bank     string
}

type dashboardData struct {
	Banks            []bankRow
	TotalInflows     string
	TotalOutflows    string
	AvailableBalance string
	Recent           []txRow
	Categories       []string
	BankNames        []string
	Error            string
}

const recentLimit = 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := s.buildDashboard(r)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDashboard renders the balances partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := s.buildDashboard(r)
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="dashboard"><div class="placeholder">Saldo disponível: ` +
			template.HTMLEscapeString(data.AvailableBalance) + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldError, err, "template", "dashboard.html")
		_, _ = w.Write([]byte(`<section id="dashboard"><div class="error">Erro ao carregar o painel</div></section>`))
	}
}

func (s *Server) buildDashboard(r *http.Request) dashboardData {
	snap, err := s.getSnapshot(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Snapshot load failed", applog.FieldError, err)
		return dashboardData{Error: "Não foi possível carregar os dados"}
	}
	return renderDashboard(snap, parseFilter(r))
}

// renderDashboard turns a snapshot into display strings. Bank rows come
// out name-sorted so the table is stable across reloads; banks that only
// exist as transaction references are flagged. The filter narrows the
// transaction list only; balances always cover everything.
func renderDashboard(snap services.Snapshot, filter core.Filter) dashboardData {
	ru := rollup(snap)

	known := make(map[string]bool, len(snap.Banks))
	for _, b := range snap.Banks {
		known[b.Name] = true
	}

	names := make([]string, 0, len(ru.Banks))
	for name := range ru.Banks {
		names = append(names, name)
	}
	sort.Strings(names)

	data := dashboardData{
		TotalInflows:     core.FormatBRL(ru.TotalInflows),
		TotalOutflows:    core.FormatBRL(ru.TotalOutflows),
		AvailableBalance: formatSignedBRL(ru.AvailableBalance),
	}
	for _, name := range names {
		b := ru.Banks[name]
		data.Banks = append(data.Banks, bankRow{
			Name:     name,
			Opening:  formatSignedBRL(b.Opening),
			Inflows:  core.FormatBRL(b.Inflows),
			Outflows: core.FormatBRL(b.Outflows),
			Current:  formatSignedBRL(b.Current()),
			Dangling: !known[name],
		})
	}

	recent := core.FilterTransactions(snap.Transactions, filter)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	for _, t := range recent {
		data.Recent = append(data.Recent, transactionRow(t))
	}

	data.Categories = snap.Categories
	for _, b := range snap.Banks {
		data.BankNames = append(data.BankNames, b.Name)
	}
	sort.Strings(data.BankNames)

	return data
}

func transactionRow(t core.Transaction) txRow {
	return txRow{
		ID:       t.ID,
		Date:     displayDate(t.Date),
		ISODate:  t.Date.ISO(),
		Amount:   core.FormatBRL(t.Amount),
		Outflow:  !t.Amount.IsInflow(),
		Category: t.Category,
		Bank:     t.Bank,
	}
}

// formatSignedBRL keeps the minus sign for balances, unlike the
// absolute-value rendering used for individual movements.
func formatSignedBRL(m core.Money) string {
	if m.Cents < 0 {
		return "-" + core.FormatBRL(m)
	}
	return core.FormatBRL(m)
}
