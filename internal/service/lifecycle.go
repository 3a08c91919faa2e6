package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/availability"
	"github.com/Shivanand-hulikatti/villa-booking/internal/capacity"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// UpdateInput changes status, payment and free-text fields. Nil fields are
// left untouched.
type UpdateInput struct {
	Status          *model.Status
	PaymentStatus   *model.PaymentStatus
	PaymentMethod   string
	Notes           *string
	SpecialRequests *string
}

// Update applies a field update. Status changes must follow the lifecycle.
// Moving payment out of not_paid records revenue in the same write; see
// onPaymentStatusChanged.
func (s *ReservationService) Update(ctx context.Context, id string, in UpdateInput) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "update")
	defer done(&err)

	if in.Status != nil && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidInput, *in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", model.ErrInvalidInput, *in.PaymentStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if in.Status != nil && *in.Status != r.Status {
		if !r.Status.CanTransition(*in.Status) {
			return nil, &model.TransitionError{Current: r.Status, Operation: "set status to " + string(*in.Status)}
		}
		setStatus(r, *in.Status, now)
	}
	if in.Notes != nil {
		r.Notes = *in.Notes
	}
	if in.SpecialRequests != nil {
		r.SpecialRequests = *in.SpecialRequests
	}
	previous := r.PaymentStatus
	if in.PaymentStatus != nil {
		r.PaymentStatus = *in.PaymentStatus
	}
	r.LastUpdated = now

	var entry *model.RevenueEntry
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if entry, err = s.onPaymentStatusChanged(ctx, r, previous, in.PaymentMethod); err != nil {
			return err
		}
		return s.store.Update(ctx, r)
	})
	if err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	s.publish("reservation.updated", r)
	if entry != nil {
		s.metrics.RevenueRecorded(entry)
		s.events.Publish("revenue.recorded", *entry)
	}
	return r, nil
}

// setStatus moves r to next and stamps the matching lifecycle timestamp.
func setStatus(r *model.Reservation, next model.Status, now time.Time) {
	r.Status = next
	switch next {
	case model.StatusCancelled:
		r.CancelledAt = &now
	case model.StatusCheckedIn:
		r.CheckedInAt = &now
	case model.StatusCheckedOut:
		r.CheckedOutAt = &now
	}
}

// CancelInput carries optional cancellation details.
type CancelInput struct {
	Reason       string
	RefundAmount *float64
}

// Cancel releases a pending or confirmed reservation. The record is kept.
func (s *ReservationService) Cancel(ctx context.Context, id string, in CancelInput) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "cancel")
	defer done(&err)

	if in.RefundAmount != nil && *in.RefundAmount < 0 {
		return nil, fmt.Errorf("%w: refund amount cannot be negative", model.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransition(model.StatusCancelled) {
		return nil, &model.TransitionError{Current: r.Status, Operation: "cancel"}
	}

	now := s.now()
	setStatus(r, model.StatusCancelled, now)
	r.CancellationReason = in.Reason
	r.RefundAmount = in.RefundAmount
	r.LastUpdated = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	s.logf("cancelled %s", r.ConfirmationNumber)
	s.publish("reservation.cancelled", r)
	return r, nil
}

// ModifyInput changes the stay dates and/or the party. Nil fields keep their
// current value; a nil ChildrenAges keeps the recorded ages. ChildrenAges
// without Children sets the child count to the number of ages.
type ModifyInput struct {
	CheckIn      *time.Time
	CheckOut     *time.Time
	Adults       *int
	Children     *int
	ChildrenAges []int
}

// Modify re-validates and re-prices a reservation whose dates or party
// change. Availability is checked against every other reservation of the
// unit; capacity only when the party changes.
func (s *ReservationService) Modify(ctx context.Context, id string, in ModifyInput) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "modify")
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == model.StatusCancelled || r.Status == model.StatusCheckedOut {
		return nil, &model.TransitionError{Current: r.Status, Operation: "modify"}
	}

	dr := r.Dates
	if in.CheckIn != nil {
		dr.CheckIn = model.ToDate(*in.CheckIn)
	}
	if in.CheckOut != nil {
		dr.CheckOut = model.ToDate(*in.CheckOut)
	}
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	datesChanged := !dr.Equal(r.Dates)

	guests := r.Guests
	if in.Adults != nil || in.Children != nil || in.ChildrenAges != nil {
		adults, children, ages := r.Guests.Adults, r.Guests.Children, r.Guests.ChildrenAges
		if in.Adults != nil {
			adults = *in.Adults
		}
		if in.ChildrenAges != nil {
			ages = in.ChildrenAges
			children = len(ages)
		}
		if in.Children != nil {
			children = *in.Children
		}
		if in.ChildrenAges != nil && len(ages) > children {
			return nil, fmt.Errorf("%w: %d children ages given for %d children", model.ErrInvalidInput, len(ages), children)
		}
		guests = capacity.Classify(adults, children, ages)
	}
	guestsChanged := !sameParty(guests, r.Guests)

	if !datesChanged && !guestsChanged {
		return r, nil
	}

	unit, err := s.catalog.GetUnit(r.UnitID)
	if err != nil {
		return nil, err
	}
	if guestsChanged {
		if err := capacity.Check(guests, unit); err != nil {
			return nil, err
		}
	}
	if datesChanged {
		existing, err := s.store.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("load reservations: %w", err)
		}
		if conflicts := availability.FindConflicts(existing, r.UnitID, dr, r.ID); len(conflicts) > 0 {
			return nil, model.NewDateConflictError(r.UnitID, conflicts)
		}
	}

	r.Dates = dr
	r.Nights = dr.Nights()
	r.Guests = guests
	r.Price = s.pricing.Quote(unit, dr, guests)
	r.LastUpdated = s.now()
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	s.publish("reservation.modified", r)
	return r, nil
}

func sameParty(a, b model.GuestComposition) bool {
	if a.Adults != b.Adults || a.Children != b.Children || len(a.ChildrenAges) != len(b.ChildrenAges) {
		return false
	}
	for i := range a.ChildrenAges {
		if a.ChildrenAges[i] != b.ChildrenAges[i] {
			return false
		}
	}
	return true
}

// CheckIn marks the guest as arrived.
func (s *ReservationService) CheckIn(ctx context.Context, id, by string) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "check_in")
	defer done(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransition(model.StatusCheckedIn) {
		return nil, &model.TransitionError{Current: r.Status, Operation: "check in"}
	}

	now := s.now()
	setStatus(r, model.StatusCheckedIn, now)
	r.CheckedInBy = by
	r.LastUpdated = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	s.publish("reservation.checked_in", r)
	return r, nil
}

// CheckOutInput carries the departing staff member and any extra charges in
// local currency.
type CheckOutInput struct {
	By           string
	ExtraCharges float64
	ChargesNote  string
}

// CheckOut closes a checked-in stay. Extra charges are added to the local
// total and the USD total is recomputed at the current rate.
func (s *ReservationService) CheckOut(ctx context.Context, id string, in CheckOutInput) (_ *model.Reservation, err error) {
	ctx, done := s.begin(ctx, "check_out")
	defer done(&err)

	if in.ExtraCharges < 0 {
		return nil, fmt.Errorf("%w: extra charges cannot be negative", model.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransition(model.StatusCheckedOut) {
		return nil, &model.TransitionError{Current: r.Status, Operation: "check out"}
	}

	now := s.now()
	setStatus(r, model.StatusCheckedOut, now)
	r.CheckedOutBy = in.By
	if in.ExtraCharges > 0 {
		r.ExtraCharges = model.Round2(r.ExtraCharges + in.ExtraCharges)
		r.Price.TotalLocal = model.Round2(r.Price.TotalLocal + in.ExtraCharges)
		r.Price.TotalUSD = s.pricing.ToUSD(r.Price.TotalLocal)
		r.ChargesNote = in.ChargesNote
	}
	r.LastUpdated = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	s.publish("reservation.checked_out", r)
	return r, nil
}
