package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Shivanand-hulikatti/villa-booking/internal/catalog"
	"github.com/Shivanand-hulikatti/villa-booking/internal/currency"
	"github.com/Shivanand-hulikatti/villa-booking/internal/metrics"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/repository"
	"github.com/Shivanand-hulikatti/villa-booking/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.New(catalog.Default())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	conv := currency.NewConverter("ARS", 1000, currency.WithObserver(m))
	svc := service.NewReservationService(cat, conv,
		repository.NewMemoryReservationStore(),
		repository.NewMemoryRevenueLedger(),
		service.WithRecorder(m),
	)
	return NewRouter(New(svc, conv), reg)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func booking(unit, in, out string, adults int) map[string]any {
	return map[string]any{
		"unit_id":   unit,
		"guest":     map[string]string{"name": "Ana Perez", "email": "ana@example.com"},
		"check_in":  in,
		"check_out": out,
		"adults":    adults,
	}
}

func TestCreateReservation_ConflictFlow(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/reservations", booking("ground-floor", "2025-04-01", "2025-04-05", 2))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	first := decode[model.Reservation](t, rec)
	if first.Nights != 4 || first.Status != model.StatusPending || first.PaymentStatus != model.PaymentNotPaid {
		t.Errorf("created = %+v", first)
	}
	if first.Price.TotalLocal != 400000 {
		t.Errorf("total local = %v, want 400000", first.Price.TotalLocal)
	}

	rec = do(t, h, http.MethodPost, "/reservations", booking("ground-floor", "2025-04-03", "2025-04-06", 2))
	if rec.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409", rec.Code)
	}
	errResp := decode[struct {
		Kind    string                  `json:"kind"`
		Details model.DateConflictError `json:"details"`
	}](t, rec)
	if errResp.Kind != "date_conflict" {
		t.Errorf("kind = %q, want date_conflict", errResp.Kind)
	}
	if len(errResp.Details.Conflicts) != 1 || errResp.Details.Conflicts[0].ReservationID != first.ID {
		t.Errorf("conflicts = %+v, want %s", errResp.Details.Conflicts, first.ID)
	}

	// Check-out day is free for the next guest.
	rec = do(t, h, http.MethodPost, "/reservations", booking("ground-floor", "2025-04-05", "2025-04-07", 2))
	if rec.Code != http.StatusCreated {
		t.Errorf("back-to-back status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestCreateReservation_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantKind   string
	}{
		{"unknown unit", booking("attic", "2025-04-01", "2025-04-05", 2), http.StatusNotFound, "unit_not_found"},
		{"reversed dates", booking("ground-floor", "2025-04-05", "2025-04-01", 2), http.StatusBadRequest, "invalid_date_range"},
		{"too many adults", booking("ground-floor", "2025-04-01", "2025-04-05", 5), http.StatusBadRequest, "capacity_exceeded"},
		{"bad date format", booking("ground-floor", "04/01/2025", "2025-04-05", 2), http.StatusBadRequest, "invalid_input"},
		{"missing unit", booking("", "2025-04-01", "2025-04-05", 2), http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t)
			rec := do(t, h, http.MethodPost, "/reservations", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body)
			}
			resp := decode[errorResponse](t, rec)
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
		})
	}
}

func TestCreateReservation_PropertyIDAlias(t *testing.T) {
	h := newTestRouter(t)
	body := booking("", "2025-08-01", "2025-08-03", 2)
	delete(body, "unit_id")
	body["propertyId"] = "first-floor"

	rec := do(t, h, http.MethodPost, "/reservations", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[model.Reservation](t, rec); got.UnitID != "first-floor" {
		t.Errorf("unit = %s, want first-floor", got.UnitID)
	}
}

func TestPaymentRecordsRevenueOnce(t *testing.T) {
	h := newTestRouter(t)
	created := decode[model.Reservation](t, do(t, h, http.MethodPost, "/reservations",
		booking("ground-floor", "2025-04-01", "2025-04-05", 2)))

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPatch, "/reservations/"+created.ID, map[string]any{
			"payment_status": "full_payment",
			"payment_method": "transfer",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("patch %d status = %d, body %s", i, rec.Code, rec.Body)
		}
	}

	rec := do(t, h, http.MethodGet, "/revenue?source_id="+created.ID, nil)
	entries := decode[[]model.RevenueEntry](t, rec)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Amount != 400000 || entries[0].PaymentMethod != "transfer" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestCancelBlocksCheckIn(t *testing.T) {
	h := newTestRouter(t)
	created := decode[model.Reservation](t, do(t, h, http.MethodPost, "/reservations",
		booking("first-floor", "2025-05-10", "2025-05-12", 3)))

	rec := do(t, h, http.MethodPost, "/reservations/"+created.ID+"/cancel", map[string]any{"reason": "flight cancelled"})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodPost, "/reservations/"+created.ID+"/check-in", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("check-in status = %d, want 409", rec.Code)
	}
	resp := decode[struct {
		Kind    string                `json:"kind"`
		Details model.TransitionError `json:"details"`
	}](t, rec)
	if resp.Kind != "invalid_state_transition" || resp.Details.Current != model.StatusCancelled {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetReservation_NotFound(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/reservations/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCheckAvailability(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/reservations", booking("ground-floor", "2025-01-10", "2025-01-15", 2))

	rec := do(t, h, http.MethodPost, "/availability", map[string]any{
		"check_in":  "2025-01-12",
		"check_out": "2025-01-14",
		"adults":    5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	results := decode[[]service.AvailabilityResult](t, rec)
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	byUnit := map[string]service.AvailabilityResult{}
	for _, res := range results {
		byUnit[res.Unit.ID] = res
	}

	ground := byUnit["ground-floor"]
	if ground.Available || ground.CapacityIssue == nil || len(ground.Conflicts) != 1 {
		t.Errorf("ground-floor = %+v, want capacity issue and one conflict", ground)
	}
	first := byUnit["first-floor"]
	if !first.Available {
		t.Errorf("first-floor unavailable: %+v", first)
	}
	if first.Quote.Season != model.SeasonPeak || first.Quote.SeasonalFactor != 1.2 {
		t.Errorf("quote season = %s x%v, want peak x1.2", first.Quote.Season, first.Quote.SeasonalFactor)
	}
}

func TestUnitsAndRate(t *testing.T) {
	h := newTestRouter(t)

	units := decode[[]model.Unit](t, do(t, h, http.MethodGet, "/units", nil))
	if len(units) != 2 {
		t.Errorf("units = %d, want 2", len(units))
	}
	if rec := do(t, h, http.MethodGet, "/units/penthouse", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown unit status = %d, want 404", rec.Code)
	}

	rate := decode[rateResponse](t, do(t, h, http.MethodGet, "/exchange-rate", nil))
	if rate.Base != "USD" || rate.Currency != "ARS" || rate.Rate != 1000 {
		t.Errorf("rate = %+v", rate)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/reservations", booking("ground-floor", "2025-04-01", "2025-04-05", 2))

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`villa_reservation_operations_total{op="create",result="ok"} 1`)) {
		t.Errorf("create counter missing from /metrics output")
	}
}
