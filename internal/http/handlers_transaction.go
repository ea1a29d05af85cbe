package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	applog "financas/internal/log"
	"financas/internal/records"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Parse form error",
			applog.FieldError, err, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}

	t, err := parseTransactionForm(r)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados inválidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	// A new category from the form is registered on the fly.
	if err := s.store.UpsertCategory(r.Context(), t.Category); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Category upsert failed",
			applog.FieldError, err, applog.FieldCategory, t.Category)
	}

	id, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction create error",
			applog.FieldError, err,
			applog.FieldBank, t.Bank,
			applog.FieldAmountCents, t.Amount.Cents)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao salvar</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", `{"transaction:changed": {"id": `+strconv.FormatInt(id, 10)+`}}`)
	w.WriteHeader(http.StatusOK)
	row := transactionRow(t)
	_, _ = w.Write([]byte(`<div class="success">Lançamento registrado (#` + strconv.FormatInt(id, 10) + `): ` +
		template.HTMLEscapeString(row.Amount) + ` — ` +
		template.HTMLEscapeString(t.Category) + ` / ` +
		template.HTMLEscapeString(t.Bank) + `</div>`))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
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

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil || id < 1 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Identificador inválido</div>`))
		return
	}

	t, err := parseTransactionForm(r)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Dados inválidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	if err := s.store.UpdateTransaction(r.Context(), id, t); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<div class="error">Lançamento não encontrado</div>`))
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction update error",
			applog.FieldError, err, applog.FieldTxID, id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao salvar</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", `{"transaction:changed": {"id": `+strconv.FormatInt(id, 10)+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Lançamento #` + strconv.FormatInt(id, 10) + ` atualizado</div>`))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil || id < 1 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Identificador inválido</div>`))
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		if errors.Is(err, records.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<div class="error">Lançamento não encontrado</div>`))
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction delete error",
			applog.FieldError, err, applog.FieldTxID, id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao excluir</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", `{"transaction:changed": {"id": `+strconv.FormatInt(id, 10)+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Lançamento #` + strconv.FormatInt(id, 10) + ` excluído</div>`))
}
