package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/villa-booking/internal/currency"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

const defaultPaymentMethod = "unspecified"

// onPaymentStatusChanged records accommodation revenue when a reservation
// leaves not_paid for advance_payment (50% of the total) or full_payment
// (100%). The entry is keyed by reservation id and target status, so saving
// the same transition again appends nothing. It runs inside the caller's
// transaction and lock. Once a payment has been recorded the reservation
// cannot go back to not_paid, so a later payment never books revenue twice.
func (s *ReservationService) onPaymentStatusChanged(ctx context.Context, r *model.Reservation, from model.PaymentStatus, method string) (*model.RevenueEntry, error) {
	to := r.PaymentStatus
	if to == model.PaymentNotPaid && from != model.PaymentNotPaid {
		recorded, err := s.paymentRecorded(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if recorded {
			return nil, fmt.Errorf("%w: payment for %s is already recorded as revenue, cannot revert to %s",
				model.ErrInvalidInput, r.ConfirmationNumber, to)
		}
		return nil, nil
	}
	if from != model.PaymentNotPaid || (to != model.PaymentAdvance && to != model.PaymentFull) {
		return nil, nil
	}

	key := model.RevenueKey(r.ID, to)
	exists, err := s.ledger.HasKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check revenue key: %w", err)
	}
	if exists {
		return nil, nil
	}

	if method == "" {
		method = defaultPaymentMethod
	}
	rate := s.rates.Rate()
	amount := model.Round2(r.Price.TotalLocal * to.Share())
	var amountUSD float64
	if rate > 0 {
		amountUSD = model.Round2(amount / rate)
	}
	label := "Full payment"
	if to == model.PaymentAdvance {
		label = "Advance payment"
	}

	now := s.now()
	entry := &model.RevenueEntry{
		ID:             uuid.NewString(),
		Type:           model.RevenueAccommodation,
		Source:         model.SourceReservation,
		SourceID:       r.ID,
		IdempotencyKey: key,
		Description:    fmt.Sprintf("%s for reservation %s (%s)", label, r.ConfirmationNumber, r.UnitID),
		Amount:         amount,
		Currency:       r.Price.Currency,
		AmountUSD:      amountUSD,
		ExchangeRate:   rate,
		Date:           now,
		PaymentMethod:  method,
		Tags:           []string{"reservation", r.UnitID, string(to)},
		CreatedAt:      now,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append revenue: %w", err)
	}
	s.logf("revenue %.2f %s recorded for %s", entry.Amount, entry.Currency, r.ConfirmationNumber)
	return entry, nil
}

// paymentRecorded reports whether any payment revenue exists for the
// reservation.
func (s *ReservationService) paymentRecorded(ctx context.Context, id string) (bool, error) {
	for _, ps := range []model.PaymentStatus{model.PaymentAdvance, model.PaymentFull} {
		ok, err := s.ledger.HasKey(ctx, model.RevenueKey(id, ps))
		if err != nil {
			return false, fmt.Errorf("check revenue key: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ManualRevenueInput is a ledger entry entered by staff.
type ManualRevenueInput struct {
	Type          model.RevenueType
	Description   string
	Amount        float64
	Currency      string
	Date          time.Time
	PaymentMethod string
	Tags          []string
}

// RecordManualRevenue appends a staff-entered ledger line. Amounts may be in
// USD or the local currency.
func (s *ReservationService) RecordManualRevenue(ctx context.Context, in ManualRevenueInput) (_ *model.RevenueEntry, err error) {
	ctx, done := s.begin(ctx, "record_revenue")
	defer done(&err)

	switch in.Type {
	case model.RevenueAccommodation, model.RevenueServices, model.RevenueOther:
	default:
		return nil, fmt.Errorf("%w: unknown revenue type %q", model.ErrInvalidInput, in.Type)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", model.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", model.ErrInvalidInput)
	}
	cur := strings.ToUpper(in.Currency)
	if cur == "" {
		cur = s.rates.LocalCurrency()
	}
	usd, err := s.rates.Convert(in.Amount, cur, currency.USD)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	method := in.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}
	entry := &model.RevenueEntry{
		ID:            uuid.NewString(),
		Type:          in.Type,
		Source:        model.SourceManual,
		Description:   in.Description,
		Amount:        model.Round2(in.Amount),
		Currency:      cur,
		AmountUSD:     model.Round2(usd),
		ExchangeRate:  s.rates.Rate(),
		Date:          date,
		PaymentMethod: method,
		Tags:          in.Tags,
		CreatedAt:     now,
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append revenue: %w", err)
	}
	s.metrics.RevenueRecorded(entry)
	s.events.Publish("revenue.recorded", *entry)
	return entry, nil
}

// ListRevenue returns ledger entries matching f.
func (s *ReservationService) ListRevenue(ctx context.Context, f model.RevenueFilter) ([]model.RevenueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := s.ledger.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	return entries, nil
}
