// Package service implements the reservation lifecycle: availability and
// capacity checks, pricing snapshots, state transitions and the revenue
// ledger side effect of payments.
//
// ReservationService is the only writer of the reservation collection and the
// revenue ledger. Every check-then-write runs under one mutex so the
// no-overlap invariant cannot be broken by interleaved requests.
package service

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
	"github.com/Shivanand-hulikatti/villa-booking/internal/pricing"
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/villa-booking/internal/service")

// Catalog provides the static unit data.
type Catalog interface {
	GetUnit(id string) (model.Unit, error)
	ListUnits() []model.Unit
}

// Rates is the cached exchange rate plus conversion between USD and the
// local currency.
type Rates interface {
	pricing.Rates
	Convert(amount float64, from, to string) (float64, error)
}

// ReservationStore is the mutable reservation collection. Implementations
// return model.ErrReservationNotFound for unknown ids and must not share
// mutable state with callers.
type ReservationStore interface {
	All(ctx context.Context) ([]model.Reservation, error)
	Insert(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, r *model.Reservation) error
}

// RevenueLedger is the append-only revenue record.
type RevenueLedger interface {
	Append(ctx context.Context, e *model.RevenueEntry) error
	HasKey(ctx context.Context, idempotencyKey string) (bool, error)
	List(ctx context.Context, f model.RevenueFilter) ([]model.RevenueEntry, error)
}

// Transactor runs fn so that all store and ledger writes inside it commit or
// fail together.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher receives lifecycle events after a successful write. Publish
// must not block.
type EventPublisher interface {
	Publish(key string, payload any)
}

// Recorder collects operation metrics.
type Recorder interface {
	ObserveOperation(op string, err error, took time.Duration)
	RevenueRecorded(e *model.RevenueEntry)
}

// ReservationService orchestrates the reservation lifecycle.
type ReservationService struct {
	catalog Catalog
	rates   Rates
	pricing *pricing.Calculator
	store   ReservationStore
	ledger  RevenueLedger
	tx      Transactor
	events  EventPublisher
	metrics Recorder
	now     func() time.Time

	mu               sync.RWMutex
	lastConfirmation int64
}

// Option configures a ReservationService.
type Option func(*ReservationService)

// WithTransactor makes payment writes and ledger appends atomic in the store.
func WithTransactor(tx Transactor) Option {
	return func(s *ReservationService) { s.tx = tx }
}

// WithEvents publishes lifecycle events.
func WithEvents(p EventPublisher) Option {
	return func(s *ReservationService) { s.events = p }
}

// WithRecorder records per-operation metrics.
func WithRecorder(r Recorder) Option {
	return func(s *ReservationService) { s.metrics = r }
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

// NewReservationService constructs a ReservationService with its dependencies.
func NewReservationService(
	catalog Catalog,
	rates Rates,
	store ReservationStore,
	ledger RevenueLedger,
	opts ...Option,
) *ReservationService {
	s := &ReservationService{
		catalog: catalog,
		rates:   rates,
		pricing: pricing.NewCalculator(rates),
		store:   store,
		ledger:  ledger,
		tx:      directTx{},
		events:  discardEvents{},
		metrics: discardMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type directTx struct{}

func (directTx) InTx(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

type discardEvents struct{}

func (discardEvents) Publish(string, any) {}

type discardMetrics struct{}

func (discardMetrics) ObserveOperation(string, error, time.Duration) {}
func (discardMetrics) RevenueRecorded(*model.RevenueEntry) {}

// begin opens a span for op and returns a func that closes it and records
// the outcome. Call it as `defer done(&err)`.
func (s *ReservationService) begin(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, "reservation."+op)
	start := time.Now()
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, model.ErrorKind(err))
		}
		span.End()
		s.metrics.ObserveOperation(op, *errp, time.Since(start))
	}
}

func (s *ReservationService) publish(key string, r *model.Reservation) {
	s.events.Publish(key, r.Clone())
}

// nextConfirmation derives a unique, human-facing code from the creation
// time. Callers hold s.mu.
func (s *ReservationService) nextConfirmation(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastConfirmation {
		ms = s.lastConfirmation + 1
	}
	s.lastConfirmation = ms
	return "VB-" + strings.ToUpper(strconv.FormatInt(ms, 36))
}

func (s *ReservationService) find(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, model.ErrReservationNotFound
	}
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReservationService) logf(format string, args ...any) {
	log.Printf("[reservations] "+format, args...)
}
