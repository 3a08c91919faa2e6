// Package metrics exposes Prometheus collectors for the reservation engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// Metrics groups every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RevenueEntries    *prometheus.CounterVec
	RevenueAmountUSD  *prometheus.CounterVec
	ExchangeRate      prometheus.Gauge
	RateRefreshErrors prometheus.Counter
	EventsPublished   *prometheus.CounterVec
	EventsDropped     prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "villa_reservation_operations_total",
			Help: "Reservation operations by name and result kind",
		}, []string{"op", "result"}),

		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "villa_reservation_operation_duration_seconds",
			Help:    "Duration of reservation operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),

		RevenueEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "villa_revenue_entries_total",
			Help: "Revenue ledger entries by type and source",
		}, []string{"type", "source"}),

		RevenueAmountUSD: f.NewCounterVec(prometheus.CounterOpts{
			Name: "villa_revenue_usd_total",
			Help: "Recorded revenue converted to USD",
		}, []string{"type"}),

		ExchangeRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "villa_exchange_rate",
			Help: "Current local currency units per USD",
		}),

		RateRefreshErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "villa_exchange_rate_refresh_errors_total",
			Help: "Failed exchange rate refreshes",
		}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "villa_events_published_total",
			Help: "Lifecycle events handed to the broker by routing key and result",
		}, []string{"key", "result"}),

		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "villa_events_dropped_total",
			Help: "Lifecycle events dropped because the outbox was full",
		}),
	}
}

// ObserveOperation counts op under the error kind of err and records its
// duration.
func (m *Metrics) ObserveOperation(op string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, model.ErrorKind(err)).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(took.Seconds())
}

// RevenueRecorded counts a new ledger entry.
func (m *Metrics) RevenueRecorded(e *model.RevenueEntry) {
	if m == nil || e == nil {
		return
	}
	m.RevenueEntries.WithLabelValues(string(e.Type), string(e.Source)).Inc()
	m.RevenueAmountUSD.WithLabelValues(string(e.Type)).Add(e.AmountUSD)
}

// SetExchangeRate updates the rate gauge.
func (m *Metrics) SetExchangeRate(rate float64) {
	if m == nil {
		return
	}
	m.ExchangeRate.Set(rate)
}

// RateRefreshFailed counts a failed refresh.
func (m *Metrics) RateRefreshFailed() {
	if m == nil {
		return
	}
	m.RateRefreshErrors.Inc()
}

// EventPublished counts a delivery attempt for key.
func (m *Metrics) EventPublished(key string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(key, result).Inc()
}

// EventDropped counts an event that never reached the broker.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}
