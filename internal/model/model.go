// Package model defines the core domain types for the villa reservation system.
package model

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// transitions lists the legal next states for every state.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCheckedIn, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCheckedOut},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a reservation in state s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks how much of a reservation has been paid.
type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "not_paid"
	PaymentAdvance PaymentStatus = "advance_payment"
	PaymentFull    PaymentStatus = "full_payment"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentNotPaid, PaymentAdvance, PaymentFull:
		return true
	}
	return false
}

// Share is the fraction of the stay total collected at this payment status.
func (p PaymentStatus) Share() float64 {
	switch p {
	case PaymentFull:
		return 1
	case PaymentAdvance:
		return 0.5
	}
	return 0
}

// Unit is a rentable floor of the villa. Prices are USD per night keyed by
// guest-count tier.
type Unit struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	MaxAdults    int             `json:"max_adults" yaml:"max_adults"`
	MaxChildren  int             `json:"max_children" yaml:"max_children"`
	MaxOccupancy int             `json:"max_occupancy" yaml:"max_occupancy"`
	BasePrices   map[int]float64 `json:"base_prices" yaml:"base_prices"`
	CheckInTime  string          `json:"check_in_time" yaml:"check_in_time"`
	CheckOutTime string          `json:"check_out_time" yaml:"check_out_time"`
	Amenities    []string        `json:"amenities" yaml:"amenities"`
}

// DateRange is a half-open stay interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// NewDateRange truncates both ends to UTC calendar dates and validates them.
func NewDateRange(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: ToDate(checkIn), CheckOut: ToDate(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ToDate drops the clock part of t, keeping its calendar date in UTC.
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate returns ErrInvalidDateRange unless CheckIn is before CheckOut.
func (d DateRange) Validate() error {
	if d.CheckIn.IsZero() || d.CheckOut.IsZero() || !d.CheckIn.Before(d.CheckOut) {
		return ErrInvalidDateRange
	}
	return nil
}

// Nights is the number of nights in the stay, rounded up.
func (d DateRange) Nights() int {
	return int(math.Ceil(d.CheckOut.Sub(d.CheckIn).Hours() / 24))
}

// Overlaps reports whether two half-open ranges share at least one night.
// A check-out day is free for a new check-in.
func (d DateRange) Overlaps(o DateRange) bool {
	return d.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(d.CheckOut)
}

// Equal reports whether both ranges cover the same dates.
func (d DateRange) Equal(o DateRange) bool {
	return d.CheckIn.Equal(o.CheckIn) && d.CheckOut.Equal(o.CheckOut)
}

// GuestComposition is a party split into capacity classes.
type GuestComposition struct {
	Adults            int   `json:"adults"`
	Children          int   `json:"children"`
	ChildrenAges      []int `json:"children_ages"`
	EffectiveAdults   int   `json:"effective_adults"`
	EffectiveChildren int   `json:"effective_children"`
}

// TotalGuests counts every head in the party.
func (g GuestComposition) TotalGuests() int {
	return g.EffectiveAdults + g.EffectiveChildren
}

// Contact holds the booker's details.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// Season classifies check-in months for the seasonal surcharge.
type Season string

const (
	SeasonPeak     Season = "peak"
	SeasonHigh     Season = "high"
	SeasonStandard Season = "standard"
)

// PriceQuote is the result of pricing a stay. Reservations keep the quote
// they were booked at as a snapshot.
type PriceQuote struct {
	UnitID               string  `json:"unit_id"`
	Tier                 int     `json:"tier"`
	Nights               int     `json:"nights"`
	NightlyUSD           float64 `json:"nightly_usd"`
	NightlyLocal         float64 `json:"nightly_local"`
	NightlyLocalSeasonal float64 `json:"nightly_local_seasonal"`
	TotalLocal           float64 `json:"total_local"`
	TotalUSD             float64 `json:"total_usd"`
	ExchangeRate         float64 `json:"exchange_rate"`
	SeasonalFactor       float64 `json:"seasonal_factor"`
	Season               Season  `json:"season"`
	Currency             string  `json:"currency"`
}

// Reservation is a booking of one unit for one date range.
type Reservation struct {
	ID                 string           `json:"id"`
	ConfirmationNumber string           `json:"confirmation_number"`
	UnitID             string           `json:"unit_id"`
	Guest              Contact          `json:"guest"`
	Guests             GuestComposition `json:"guests"`
	Dates              DateRange        `json:"dates"`
	Nights             int              `json:"nights"`
	Price              PriceQuote       `json:"price"`
	Status             Status           `json:"status"`
	PaymentStatus      PaymentStatus    `json:"payment_status"`
	Notes              string           `json:"notes,omitempty"`
	SpecialRequests    string           `json:"special_requests,omitempty"`

	CancellationReason string   `json:"cancellation_reason,omitempty"`
	RefundAmount       *float64 `json:"refund_amount,omitempty"`
	CheckedInBy        string   `json:"checked_in_by,omitempty"`
	CheckedOutBy       string   `json:"checked_out_by,omitempty"`
	ExtraCharges       float64  `json:"extra_charges,omitempty"`
	ChargesNote        string   `json:"charges_note,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	LastUpdated  time.Time  `json:"last_updated"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
}

// Active reports whether the reservation still holds its dates.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *Reservation) Clone() *Reservation {
	c := *r
	if r.Guests.ChildrenAges != nil {
		c.Guests.ChildrenAges = append([]int(nil), r.Guests.ChildrenAges...)
	}
	c.RefundAmount = clonePtr(r.RefundAmount)
	c.CancelledAt = clonePtr(r.CancelledAt)
	c.CheckedInAt = clonePtr(r.CheckedInAt)
	c.CheckedOutAt = clonePtr(r.CheckedOutAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// RevenueType categorises ledger entries.
type RevenueType string

const (
	RevenueAccommodation RevenueType = "accommodation"
	RevenueServices      RevenueType = "services"
	RevenueOther         RevenueType = "other"
)

// RevenueSource records what produced a ledger entry.
type RevenueSource string

const (
	SourceReservation RevenueSource = "reservation"
	SourceManual      RevenueSource = "manual"
)

// RevenueEntry is one line of the revenue ledger.
type RevenueEntry struct {
	ID             string        `json:"id"`
	Type           RevenueType   `json:"type"`
	Source         RevenueSource `json:"source"`
	SourceID       string        `json:"source_id,omitempty"`
	IdempotencyKey string        `json:"idempotency_key,omitempty"`
	Description    string        `json:"description"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	AmountUSD      float64       `json:"amount_usd"`
	ExchangeRate   float64       `json:"exchange_rate"`
	Date           time.Time     `json:"date"`
	PaymentMethod  string        `json:"payment_method,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RevenueKey is the idempotency key of the ledger entry produced when a
// reservation reaches the given payment status.
func RevenueKey(reservationID string, status PaymentStatus) string {
	return reservationID + ":" + string(status)
}

// Round2 rounds a money amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
