package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

const reservationColumns = `id, confirmation_number, unit_id,
	guest_name, guest_email, guest_phone, guest_country,
	adults, children, children_ages, effective_adults, effective_children,
	check_in, check_out, nights, price, status, payment_status,
	notes, special_requests, cancellation_reason, refund_amount,
	checked_in_by, checked_out_by, extra_charges, charges_note,
	created_at, last_updated, cancelled_at, checked_in_at, checked_out_at`

// ReservationRepository stores reservations in PostgreSQL.
type ReservationRepository struct {
	db *pgxpool.Pool
}

// NewReservationRepository constructs a ReservationRepository.
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	err := row.Scan(
		&r.ID, &r.ConfirmationNumber, &r.UnitID,
		&r.Guest.Name, &r.Guest.Email, &r.Guest.Phone, &r.Guest.Country,
		&r.Guests.Adults, &r.Guests.Children, &r.Guests.ChildrenAges,
		&r.Guests.EffectiveAdults, &r.Guests.EffectiveChildren,
		&r.Dates.CheckIn, &r.Dates.CheckOut, &r.Nights, &r.Price, &r.Status, &r.PaymentStatus,
		&r.Notes, &r.SpecialRequests, &r.CancellationReason, &r.RefundAmount,
		&r.CheckedInBy, &r.CheckedOutBy, &r.ExtraCharges, &r.ChargesNote,
		&r.CreatedAt, &r.LastUpdated, &r.CancelledAt, &r.CheckedInAt, &r.CheckedOutAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func reservationArgs(r *model.Reservation) []any {
	return []any{
		r.ID, r.ConfirmationNumber, r.UnitID,
		r.Guest.Name, r.Guest.Email, r.Guest.Phone, r.Guest.Country,
		r.Guests.Adults, r.Guests.Children, r.Guests.ChildrenAges,
		r.Guests.EffectiveAdults, r.Guests.EffectiveChildren,
		r.Dates.CheckIn, r.Dates.CheckOut, r.Nights, r.Price, string(r.Status), string(r.PaymentStatus),
		r.Notes, r.SpecialRequests, r.CancellationReason, r.RefundAmount,
		r.CheckedInBy, r.CheckedOutBy, r.ExtraCharges, r.ChargesNote,
		r.CreatedAt, r.LastUpdated, r.CancelledAt, r.CheckedInAt, r.CheckedOutAt,
	}
}

// All returns every reservation ordered by check-in.
func (r *ReservationRepository) All(ctx context.Context) ([]model.Reservation, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY check_in ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// Insert writes a new reservation.
func (r *ReservationRepository) Insert(ctx context.Context, res *model.Reservation) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO reservations (`+reservationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		         $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		reservationArgs(res)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reservation %s", ErrDuplicate, res.ID)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// FindByID returns a single reservation or ErrNotFound.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := scanReservation(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// Update overwrites every mutable column of an existing reservation.
func (r *ReservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE reservations SET
			guest_name = $2, guest_email = $3, guest_phone = $4, guest_country = $5,
			adults = $6, children = $7, children_ages = $8,
			effective_adults = $9, effective_children = $10,
			check_in = $11, check_out = $12, nights = $13, price = $14,
			status = $15, payment_status = $16, notes = $17, special_requests = $18,
			cancellation_reason = $19, refund_amount = $20,
			checked_in_by = $21, checked_out_by = $22, extra_charges = $23, charges_note = $24,
			last_updated = $25, cancelled_at = $26, checked_in_at = $27, checked_out_at = $28
		 WHERE id = $1`,
		res.ID,
		res.Guest.Name, res.Guest.Email, res.Guest.Phone, res.Guest.Country,
		res.Guests.Adults, res.Guests.Children, res.Guests.ChildrenAges,
		res.Guests.EffectiveAdults, res.Guests.EffectiveChildren,
		res.Dates.CheckIn, res.Dates.CheckOut, res.Nights, res.Price,
		string(res.Status), string(res.PaymentStatus), res.Notes, res.SpecialRequests,
		res.CancellationReason, res.RefundAmount,
		res.CheckedInBy, res.CheckedOutBy, res.ExtraCharges, res.ChargesNote,
		res.LastUpdated, res.CancelledAt, res.CheckedInAt, res.CheckedOutAt,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RevenueRepository stores the revenue ledger in PostgreSQL.
type RevenueRepository struct {
	db *pgxpool.Pool
}

// NewRevenueRepository constructs a RevenueRepository.
func NewRevenueRepository(db *pgxpool.Pool) *RevenueRepository {
	return &RevenueRepository{db: db}
}

// Append inserts a ledger entry. The unique index on idempotency_key turns
// a repeated side effect into ErrDuplicate.
func (r *RevenueRepository) Append(ctx context.Context, e *model.RevenueEntry) error {
	var key *string
	if e.IdempotencyKey != "" {
		key = &e.IdempotencyKey
	}
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO revenue_entries
		   (id, type, source, source_id, idempotency_key, description, amount, currency,
		    amount_usd, exchange_rate, entry_date, payment_method, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, string(e.Type), string(e.Source), e.SourceID, key, e.Description, e.Amount, e.Currency,
		e.AmountUSD, e.ExchangeRate, e.Date, e.PaymentMethod, e.Tags, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: revenue key %s", ErrDuplicate, e.IdempotencyKey)
		}
		return fmt.Errorf("insert revenue entry: %w", err)
	}
	return nil
}

// HasKey reports whether an entry with the idempotency key exists.
func (r *RevenueRepository) HasKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revenue_entries WHERE idempotency_key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check revenue key: %w", err)
	}
	return exists, nil
}

// List returns matching entries ordered by date.
func (r *RevenueRepository) List(ctx context.Context, f model.RevenueFilter) ([]model.RevenueEntry, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT id, type, source, source_id, COALESCE(idempotency_key, ''), description, amount,
		        currency, amount_usd, exchange_rate, entry_date, payment_method, tags, created_at
		 FROM revenue_entries
		 WHERE ($1 = '' OR type = $1)
		   AND ($2 = '' OR source = $2)
		   AND ($3 = '' OR source_id = $3)
		 ORDER BY entry_date ASC`,
		string(f.Type), string(f.Source), f.SourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revenue: %w", err)
	}
	defer rows.Close()

	var out []model.RevenueEntry
	for rows.Next() {
		var e model.RevenueEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Source, &e.SourceID, &e.IdempotencyKey, &e.Description,
			&e.Amount, &e.Currency, &e.AmountUSD, &e.ExchangeRate, &e.Date, &e.PaymentMethod,
			&e.Tags, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revenue entry: %w", err)
		}
		// Date window is applied here so the SQL stays free of nullable
		// timestamp parameters.
		if f.Match(&e) {
			out = append(out, e)
		}
	}
	return out, rows.Err()
}
