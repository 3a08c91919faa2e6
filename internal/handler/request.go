package handler

import (
	"net/url"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// unitRef accepts the unit under any of the names clients send and
// resolves to one id.
type unitRef struct {
	UnitID      string `json:"unit_id"`
	UnitIDCamel string `json:"unitId"`
	PropertyID  string `json:"propertyId"`
}

func (u unitRef) id() string {
	for _, v := range []string{u.UnitID, u.UnitIDCamel, u.PropertyID} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type guestRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Country string `json:"country" validate:"max=100"`
}

func (g guestRequest) contact() model.Contact {
	return model.Contact{
		Name:    strings.TrimSpace(g.Name),
		Email:   strings.TrimSpace(g.Email),
		Phone:   strings.TrimSpace(g.Phone),
		Country: strings.TrimSpace(g.Country),
	}
}

type createReservationRequest struct {
	unitRef
	Guest           guestRequest `json:"guest"`
	CheckIn         string       `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut        string       `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults          int          `json:"adults" validate:"min=1,max=50"`
	Children        int          `json:"children" validate:"min=0,max=50"`
	ChildrenAges    []int        `json:"children_ages" validate:"omitempty,max=50,dive,min=0,max=17"`
	Notes           string       `json:"notes" validate:"max=2000"`
	SpecialRequests string       `json:"special_requests" validate:"max=2000"`
}

type availabilityRequest struct {
	unitRef
	CheckIn      string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut     string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults       int    `json:"adults" validate:"min=1,max=50"`
	Children     int    `json:"children" validate:"min=0,max=50"`
	ChildrenAges []int  `json:"children_ages" validate:"omitempty,max=50,dive,min=0,max=17"`
}

type updateReservationRequest struct {
	Status          *model.Status        `json:"status"`
	PaymentStatus   *model.PaymentStatus `json:"payment_status"`
	PaymentMethod   string               `json:"payment_method" validate:"max=100"`
	Notes           *string              `json:"notes" validate:"omitempty,max=2000"`
	SpecialRequests *string              `json:"special_requests" validate:"omitempty,max=2000"`
}

type cancelRequest struct {
	Reason       string   `json:"reason" validate:"max=1000"`
	RefundAmount *float64 `json:"refund_amount" validate:"omitempty,gte=0"`
}

type modifyRequest struct {
	CheckIn      *string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut     *string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Adults       *int    `json:"adults" validate:"omitempty,min=1,max=50"`
	Children     *int    `json:"children" validate:"omitempty,min=0,max=50"`
	ChildrenAges []int   `json:"children_ages" validate:"omitempty,max=50,dive,min=0,max=17"`
}

type checkInRequest struct {
	By string `json:"by" validate:"max=200"`
}

type checkOutRequest struct {
	By           string  `json:"by" validate:"max=200"`
	ExtraCharges float64 `json:"extra_charges" validate:"gte=0"`
	ChargesNote  string  `json:"charges_note" validate:"max=1000"`
}

type revenueRequest struct {
	Type          model.RevenueType `json:"type" validate:"required,oneof=accommodation services other"`
	Description   string            `json:"description" validate:"required,max=500"`
	Amount        float64           `json:"amount" validate:"gt=0"`
	Currency      string            `json:"currency" validate:"omitempty,len=3"`
	Date          string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string            `json:"payment_method" validate:"max=100"`
	Tags          []string          `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// parseDate parses a YYYY-MM-DD value already checked by the validator.
func parseDate(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t := parseDate(*s)
	return &t
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(model.DateLayout, v)
	if err != nil {
		return time.Time{}, invalid(key + " must be YYYY-MM-DD")
	}
	return t, nil
}

func reservationFilter(q url.Values) (model.ReservationFilter, error) {
	f := model.ReservationFilter{
		Status:        model.Status(q.Get("status")),
		UnitID:        firstNonEmpty(q.Get("unit_id"), q.Get("unitId"), q.Get("propertyId")),
		PaymentStatus: model.PaymentStatus(q.Get("payment_status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, invalid("unknown status " + string(f.Status))
	}
	if f.PaymentStatus != "" && !f.PaymentStatus.Valid() {
		return f, invalid("unknown payment_status " + string(f.PaymentStatus))
	}
	var err error
	if f.From, err = queryDate(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(q, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func revenueFilter(q url.Values) (model.RevenueFilter, error) {
	f := model.RevenueFilter{
		Type:     model.RevenueType(q.Get("type")),
		Source:   model.RevenueSource(q.Get("source")),
		SourceID: q.Get("source_id"),
	}
	var err error
	if f.From, err = queryDate(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(q, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
