package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/villa-booking/internal/currency"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/service"
)

// ListUnits handles GET /units
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListUnits())
}

// GetUnit handles GET /units/{id}
func (h *Handler) GetUnit(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUnit(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type rateResponse struct {
	Base      string     `json:"base"`
	Currency  string     `json:"currency"`
	Rate      float64    `json:"rate"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ExchangeRate handles GET /exchange-rate
func (h *Handler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	resp := rateResponse{
		Base:     currency.USD,
		Currency: h.rates.LocalCurrency(),
		Rate:     h.rates.Rate(),
	}
	if t := h.rates.UpdatedAt(); !t.IsZero() {
		resp.UpdatedAt = &t
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRevenue handles GET /revenue
// Optional filters: type, source, source_id, from, to.
func (h *Handler) ListRevenue(w http.ResponseWriter, r *http.Request) {
	f, err := revenueFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.svc.ListRevenue(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.RevenueEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// RecordRevenue handles POST /revenue
// Records a manual ledger entry such as a service charge.
func (h *Handler) RecordRevenue(w http.ResponseWriter, r *http.Request) {
	var req revenueRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var date time.Time
	if req.Date != "" {
		date = parseDate(req.Date)
	}
	entry, err := h.svc.RecordManualRevenue(r.Context(), service.ManualRevenueInput{
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
