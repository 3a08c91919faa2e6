package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/service"
)

// CreateReservation handles POST /reservations
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	unitID := req.id()
	if unitID == "" {
		writeError(w, invalid("unit_id is required"))
		return
	}

	res, err := h.svc.Create(r.Context(), service.CreateInput{
		UnitID:          unitID,
		Guest:           req.Guest.contact(),
		Adults:          req.Adults,
		Children:        req.Children,
		ChildrenAges:    req.ChildrenAges,
		CheckIn:         parseDate(req.CheckIn),
		CheckOut:        parseDate(req.CheckOut),
		Notes:           req.Notes,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListReservations handles GET /reservations
// Optional filters: status, unit_id, payment_status, from, to.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	f, err := reservationFilter(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetReservation handles GET /reservations/{id}
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateReservation handles PATCH /reservations/{id}
// Changes status, payment status and free-text fields.
func (h *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req updateReservationRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), service.UpdateInput{
		Status:          req.Status,
		PaymentStatus:   req.PaymentStatus,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelReservation handles POST /reservations/{id}/cancel
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), service.CancelInput{
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ModifyReservation handles POST /reservations/{id}/modify
// Moves the stay and/or changes the party, re-pricing the booking.
func (h *Handler) ModifyReservation(w http.ResponseWriter, r *http.Request) {
	var req modifyRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Modify(r.Context(), chi.URLParam(r, "id"), service.ModifyInput{
		CheckIn:      parseDatePtr(req.CheckIn),
		CheckOut:     parseDatePtr(req.CheckOut),
		Adults:       req.Adults,
		Children:     req.Children,
		ChildrenAges: req.ChildrenAges,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckIn handles POST /reservations/{id}/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.CheckIn(r.Context(), chi.URLParam(r, "id"), req.By)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckOut handles POST /reservations/{id}/check-out
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.CheckOut(r.Context(), chi.URLParam(r, "id"), service.CheckOutInput{
		By:           req.By,
		ExtraCharges: req.ExtraCharges,
		ChargesNote:  req.ChargesNote,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckAvailability handles POST /availability
// Without a unit id every unit is evaluated.
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := h.bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	results, err := h.svc.CheckAvailability(r.Context(), service.AvailabilityQuery{
		UnitID:       req.id(),
		CheckIn:      parseDate(req.CheckIn),
		CheckOut:     parseDate(req.CheckOut),
		Adults:       req.Adults,
		Children:     req.Children,
		ChildrenAges: req.ChildrenAges,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
