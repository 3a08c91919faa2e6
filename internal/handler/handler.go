// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the reservation service.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/service"
)

// RateView is the read side of the currency converter.
type RateView interface {
	Rate() float64
	LocalCurrency() string
	UpdatedAt() time.Time
}

// Handler holds all HTTP handlers for the reservation API.
type Handler struct {
	svc      *service.ReservationService
	rates    RateView
	validate *validator.Validate
}

// New constructs a Handler.
func New(svc *service.ReservationService, rates RateView) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{svc: svc, rates: rates, validate: v}
}

// NewRouter builds the chi router with the middleware stack and every
// route. gatherer serves /metrics; nil disables the endpoint.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Tracing)
	r.Use(Logger)
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/units", h.ListUnits)
	r.Get("/units/{id}", h.GetUnit)
	r.Get("/exchange-rate", h.ExchangeRate)
	r.Post("/availability", h.CheckAvailability)

	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.CreateReservation)
		r.Get("/", h.ListReservations)
		r.Get("/{id}", h.GetReservation)
		r.Patch("/{id}", h.UpdateReservation)
		r.Post("/{id}/cancel", h.CancelReservation)
		r.Post("/{id}/modify", h.ModifyReservation)
		r.Post("/{id}/check-in", h.CheckIn)
		r.Post("/{id}/check-out", h.CheckOut)
	})

	r.Route("/revenue", func(r chi.Router) {
		r.Get("/", h.ListRevenue)
		r.Post("/", h.RecordRevenue)
	})

	return r
}

// errorResponse is the body of every non-2xx reply. Details carries the
// typed payload of business errors.
type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details any    `json:"details,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnitNotFound), errors.Is(err, model.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidDateRange),
		errors.Is(err, model.ErrCapacityExceeded),
		errors.Is(err, model.ErrUnsupportedCurrencyPair),
		errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDateConflict), errors.Is(err, model.ErrInvalidStateTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Kind: model.ErrorKind(err)}
	if status == http.StatusInternalServerError {
		resp.Error = "internal error"
	}

	var (
		capErr      *model.CapacityError
		conflictErr *model.DateConflictError
		transErr    *model.TransitionError
		pairErr     *model.CurrencyPairError
		valErrs     validator.ValidationErrors
	)
	switch {
	case errors.As(err, &capErr):
		resp.Details = capErr
	case errors.As(err, &conflictErr):
		resp.Details = conflictErr
	case errors.As(err, &transErr):
		resp.Details = transErr
	case errors.As(err, &pairErr):
		resp.Details = pairErr
	case errors.As(err, &valErrs):
		fields := make([]fieldError, 0, len(valErrs))
		for _, fe := range valErrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		resp.Details = fields
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst zero.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return invalid("invalid request body: " + err.Error())
	}
	return nil
}

// bind decodes and validates a request body.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError{err}
	}
	return nil
}

// validationError marks validator failures as invalid input while keeping
// the field list reachable through errors.As.
type validationError struct{ err error }

func (e validationError) Error() string   { return e.err.Error() }
func (e validationError) Unwrap() []error { return []error{model.ErrInvalidInput, e.err} }

type inputError string

func (e inputError) Error() string { return string(e) }
func (e inputError) Unwrap() error { return model.ErrInvalidInput }

func invalid(msg string) error { return inputError(msg) }

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
