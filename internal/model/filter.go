package model

import "time"

// ReservationFilter narrows reservation listings. Zero fields match anything.
// From/To select reservations whose stay overlaps [From, To).
type ReservationFilter struct {
	Status        Status
	UnitID        string
	PaymentStatus PaymentStatus
	From          time.Time
	To            time.Time
}

// Match reports whether r satisfies every set field of f.
func (f ReservationFilter) Match(r *Reservation) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.UnitID != "" && r.UnitID != f.UnitID {
		return false
	}
	if f.PaymentStatus != "" && r.PaymentStatus != f.PaymentStatus {
		return false
	}
	if !f.From.IsZero() && !r.Dates.CheckOut.After(f.From) {
		return false
	}
	if !f.To.IsZero() && !r.Dates.CheckIn.Before(f.To) {
		return false
	}
	return true
}

// RevenueFilter narrows ledger listings by entry fields and date window.
type RevenueFilter struct {
	Type     RevenueType
	Source   RevenueSource
	SourceID string
	From     time.Time
	To       time.Time
}

// Match reports whether e satisfies every set field of f.
func (f RevenueFilter) Match(e *RevenueEntry) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.SourceID != "" && e.SourceID != f.SourceID {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Date.Before(f.To) {
		return false
	}
	return true
}
