package http

import (
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/records"
)

type banksData struct {
	Banks []bankRow
	Error string
}

// handleBanks serves the bank management page on GET and upserts a bank
// on POST. Reusing an existing name overwrites its opening balance.
func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBanksPage(w, r)
	case http.MethodPost:
		s.upsertBank(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderBanksPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var data banksData
	banks, err := s.store.ListBanks(r.Context())
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Bank list error", applog.FieldError, err)
		data.Error = "Não foi possível carregar os bancos"
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].Name < banks[j].Name })
	for _, b := range banks {
		data.Banks = append(data.Banks, bankRow{
			Name:    b.Name,
			Opening: formatSignedBRL(b.OpeningBalance),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "banks.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Banks template execution failed",
			applog.FieldError, err, "template", "banks.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) upsertBank(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	cents, err := core.ParseSignedDecimalToCents(strings.TrimSpace(r.Form.Get("opening_balance")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Saldo inicial inválido</div>`))
		return
	}

	bank := core.Bank{Name: name, OpeningBalance: core.Money{Cents: cents}}
	if err := bank.Validate(); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados inválidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	if err := s.store.UpsertBank(r.Context(), bank); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Bank upsert error",
			applog.FieldError, err, applog.FieldBank, name)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao salvar</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", `{"bank:changed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Banco ` + template.HTMLEscapeString(name) + ` salvo</div>`))
}

// handleDeleteBank removes a bank. Its transactions stay and show up as
// dangling references with a zero opening balance on the dashboard.
func (s *Server) handleDeleteBank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Nome do banco é obrigatório</div>`))
		return
	}

	if err := s.store.DeleteBank(r.Context(), name); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<div class="error">Banco não encontrado</div>`))
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Bank delete error",
			applog.FieldError, err, applog.FieldBank, name)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao excluir</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", `{"bank:changed": {}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Banco ` + template.HTMLEscapeString(name) + ` excluído</div>`))
}
