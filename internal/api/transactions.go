package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// TransactionRequest is the body of transaction create and update requests.
type TransactionRequest struct {
	CategoryID  *string     `json:"categoryId"`
	PostedDate  string      `json:"postedDate"`
	Description string      `json:"description"`
	AmountCents model.Cents `json:"amountCents"`
}

func (req TransactionRequest) input() service.TransactionInput {
	return service.TransactionInput{
		CategoryID:  req.CategoryID,
		PostedDate:  req.PostedDate,
		Description: req.Description,
		AmountCents: req.AmountCents,
	}
}

// CreateTransaction handles POST /api/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	txn, err := h.transactions.Create(r.Context(), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

// ListTransactions handles GET /api/transactions?from=&to=&categoryId=&kind=.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter service.TransactionFilter
	for _, bound := range []struct {
		dst  **model.Date
		name string
	}{
		{name: "from", dst: &filter.From},
		{name: "to", dst: &filter.To},
	} {
		raw := query.Get(bound.name)
		if raw == "" {
			continue
		}
		date, err := model.ParseDate(raw)
		if err != nil {
			writeBadRequest(w, bound.name, "%s must be a date in YYYY-MM-DD format", bound.name)
			return
		}
		*bound.dst = &date
	}
	if raw := query.Get("categoryId"); raw != "" {
		filter.CategoryID = &raw
	}
	if raw := query.Get("kind"); raw != "" {
		kind, err := model.ParseCategoryKind(raw)
		if err != nil {
			writeBadRequest(w, "kind", "kind must be income, expense, 1 or 2")
			return
		}
		filter.Kind = &kind
	}

	transactions, err := h.transactions.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	txn, err := h.transactions.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MonthlySummary handles GET /api/summary/{month}.
func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.MonthlySummary(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
