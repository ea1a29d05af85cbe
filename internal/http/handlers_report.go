package http

import (
	"net/http"

	"financas/internal/core"
	applog "financas/internal/log"
)

type reportData struct {
	Bank      string
	Month     string
	BankNames []string

	Transactions []txRow
	Inflows      string
	Outflows     string
	Net          string
	Count        int
	Error        string
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	data := s.buildReport(r)
	if err := s.templates.ExecuteTemplate(w, "report.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report template execution failed",
			applog.FieldError, err, "template", "report.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleReport renders the filtered results partial.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := s.buildReport(r)
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="report-results"><div class="placeholder">Saldo: ` + data.Net + `</div></section>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "report_results.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report partial execution failed",
			applog.FieldError, err, "template", "report_results.html")
		_, _ = w.Write([]byte(`<section id="report-results"><div class="error">Erro ao carregar o relatório</div></section>`))
	}
}

func (s *Server) buildReport(r *http.Request) reportData {
	filter := parseFilter(r)
	data := reportData{Bank: filter.Bank}
	if !filter.Month.IsZero() {
		data.Month = filter.Month.String()
	}

	snap, err := s.getSnapshot(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Snapshot load failed",
			applog.FieldError, err,
			applog.FieldBank, filter.Bank,
			applog.FieldMonth, data.Month)
		data.Error = "Não foi possível carregar os dados"
		return data
	}

	filtered := core.FilterTransactions(snap.Transactions, filter)
	summary := core.Summarize(filtered)

	for _, t := range filtered {
		data.Transactions = append(data.Transactions, transactionRow(t))
	}
	data.Inflows = core.FormatBRL(summary.TotalInflows)
	data.Outflows = core.FormatBRL(summary.TotalOutflows)
	data.Net = formatSignedBRL(summary.Net)
	data.Count = len(filtered)

	for _, b := range snap.Banks {
		data.BankNames = append(data.BankNames, b.Name)
	}

	return data
}
