package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/villa-booking/internal/availability"
	"github.com/Shivanand-hulikatti/villa-booking/internal/capacity"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// CreateInput is the canonical booking request.
type CreateInput struct {
	UnitID          string
	Guest           model.Contact
	Adults          int
	Children        int
	ChildrenAges    []int
	CheckIn         time.Time
	CheckOut        time.Time
	Notes           string
	SpecialRequests string
}

// Create books a unit. The date range is validated first, then the unit,
// then capacity, then availability. New reservations start pending and
// unpaid with a snapshot of the current price.
func (s *ReservationService) Create(ctx context.Context, in CreateInput) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "create")
	defer done(&err)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("unit.id", in.UnitID))

	dr, err := model.NewDateRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	unit, err := s.catalog.GetUnit(in.UnitID)
	if err != nil {
		return nil, err
	}
	guests := capacity.Classify(in.Adults, in.Children, in.ChildrenAges)
	if err := capacity.Check(guests, unit); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	if conflicts := availability.FindConflicts(existing, unit.ID, dr, ""); len(conflicts) > 0 {
		return nil, model.NewDateConflictError(unit.ID, conflicts)
	}

	now := s.now()
	r := &model.Reservation{
		ID:                 uuid.NewString(),
		ConfirmationNumber: s.nextConfirmation(now),
		UnitID:             unit.ID,
		Guest:              in.Guest,
		Guests:             guests,
		Dates:              dr,
		Nights:             dr.Nights(),
		Price:              s.pricing.Quote(unit, dr, guests),
		Status:             model.StatusPending,
		PaymentStatus:      model.PaymentNotPaid,
		Notes:              in.Notes,
		SpecialRequests:    in.SpecialRequests,
		CreatedAt:          now,
		LastUpdated:        now,
	}
	if err := s.store.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	s.logf("created %s on %s %s..%s", r.ConfirmationNumber, r.UnitID,
		dr.CheckIn.Format(model.DateLayout), dr.CheckOut.Format(model.DateLayout))
	s.publish("reservation.created", r)
	return r, nil
}

// Get returns a reservation by id.
func (s *ReservationService) Get(ctx context.Context, id string) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(ctx, id)
}

// List returns reservations matching f ordered by check-in, then creation.
func (s *ReservationService) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	s.mu.RLock()
	all, err := s.store.All(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	out := make([]model.Reservation, 0, len(all))
	for i := range all {
		if f.Match(&all[i]) {
			out = append(out, all[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Dates.CheckIn.Equal(out[j].Dates.CheckIn) {
			return out[i].Dates.CheckIn.Before(out[j].Dates.CheckIn)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AvailabilityQuery asks which units can host a party for a date range.
// An empty UnitID searches every unit.
type AvailabilityQuery struct {
	UnitID       string
	CheckIn      time.Time
	CheckOut     time.Time
	Adults       int
	Children     int
	ChildrenAges []int
}

// AvailabilityResult is the verdict for one unit.
type AvailabilityResult struct {
	Unit          model.Unit           `json:"unit"`
	Available     bool                 `json:"available"`
	CapacityIssue *model.CapacityError `json:"capacity_issue,omitempty"`
	Quote         model.PriceQuote     `json:"quote"`
	Conflicts     []model.ConflictRef  `json:"conflicts"`
}

// CheckAvailability evaluates capacity, conflicts and price for each
// candidate unit without booking anything.
func (s *ReservationService) CheckAvailability(ctx context.Context, q AvailabilityQuery) (_ []AvailabilityResult, err error) {
	ctx, done := s.begin(ctx, "check_availability")
	defer done(&err)

	dr, err := model.NewDateRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	units := s.catalog.ListUnits()
	if q.UnitID != "" {
		u, err := s.catalog.GetUnit(q.UnitID)
		if err != nil {
			return nil, err
		}
		units = []model.Unit{u}
	}
	guests := capacity.Classify(q.Adults, q.Children, q.ChildrenAges)

	s.mu.RLock()
	existing, err := s.store.All(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	results := make([]AvailabilityResult, 0, len(units))
	for _, u := range units {
		res := AvailabilityResult{
			Unit:      u,
			Quote:     s.pricing.Quote(u, dr, guests),
			Conflicts: model.NewDateConflictError(u.ID, availability.FindConflicts(existing, u.ID, dr, "")).Conflicts,
		}
		var ce *model.CapacityError
		if errors.As(capacity.Check(guests, u), &ce) {
			res.CapacityIssue = ce
		}
		res.Available = res.CapacityIssue == nil && len(res.Conflicts) == 0
		results = append(results, res)
	}
	return results, nil
}

// ListUnits returns every unit in the catalog.
func (s *ReservationService) ListUnits() []model.Unit {
	return s.catalog.ListUnits()
}

// GetUnit returns one unit or model.ErrUnitNotFound.
func (s *ReservationService) GetUnit(id string) (model.Unit, error) {
	return s.catalog.GetUnit(id)
}
