package pricing

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/capacity"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

type fixedRate float64

func (r fixedRate) Rate() float64 { return float64(r) }
func (r fixedRate) LocalCurrency() string { return "ARS" }

func unit() model.Unit {
	return model.Unit{
		ID:           "first-floor",
		MaxAdults:    6,
		MaxOccupancy: 6,
		BasePrices:   map[int]float64{1: 80, 2: 100, 3: 120, 4: 140},
	}
}

func dates(t *testing.T, in, out string) model.DateRange {
	t.Helper()
	checkIn, err := time.Parse(model.DateLayout, in)
	if err != nil {
		t.Fatalf("parse %s: %v", in, err)
	}
	checkOut, err := time.Parse(model.DateLayout, out)
	if err != nil {
		t.Fatalf("parse %s: %v", out, err)
	}
	dr, err := model.NewDateRange(checkIn, checkOut)
	if err != nil {
		t.Fatalf("parse %s..%s: %v", in, out, err)
	}
	return dr
}

func TestSeasonFor(t *testing.T) {
	tests := []struct {
		checkIn string
		season  model.Season
		factor  float64
	}{
		{"2025-01-15", model.SeasonPeak, 1.20},
		{"2025-12-01", model.SeasonPeak, 1.20},
		{"2025-03-31", model.SeasonPeak, 1.20},
		{"2025-08-01", model.SeasonHigh, 1.10},
		{"2025-09-30", model.SeasonHigh, 1.10},
		{"2025-04-01", model.SeasonStandard, 1.00},
		{"2025-11-20", model.SeasonStandard, 1.00},
	}
	for _, tt := range tests {
		t.Run(tt.checkIn, func(t *testing.T) {
			d, _ := time.Parse(model.DateLayout, tt.checkIn)
			season, factor := SeasonFor(d.Month())
			if season != tt.season || factor != tt.factor {
				t.Errorf("got %s x%.2f, want %s x%.2f", season, factor, tt.season, tt.factor)
			}
		})
	}
}

func TestQuote_SeasonalTotals(t *testing.T) {
	calc := NewCalculator(fixedRate(1000))
	g := capacity.Classify(2, 0, nil)

	tests := []struct {
		name      string
		in, out   string
		wantTotal float64
		season    model.Season
	}{
		// 100 USD * 1000 = 100000 per night
		{"peak", "2025-01-15", "2025-01-17", 240000, model.SeasonPeak},
		{"high", "2025-08-01", "2025-08-03", 220000, model.SeasonHigh},
		{"standard", "2025-04-01", "2025-04-03", 200000, model.SeasonStandard},
		{"crossing seasons uses check-in month", "2025-03-30", "2025-04-02", 360000, model.SeasonPeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := calc.Quote(unit(), dates(t, tt.in, tt.out), g)
			if q.NightlyLocal != 100000 {
				t.Errorf("nightly local = %v, want 100000 (pre-season)", q.NightlyLocal)
			}
			if q.TotalLocal != tt.wantTotal {
				t.Errorf("total local = %v, want %v", q.TotalLocal, tt.wantTotal)
			}
			if q.TotalUSD != tt.wantTotal/1000 {
				t.Errorf("total usd = %v, want %v", q.TotalUSD, tt.wantTotal/1000)
			}
			if q.Season != tt.season || q.ExchangeRate != 1000 || q.Currency != "ARS" {
				t.Errorf("unexpected quote metadata %+v", q)
			}
		})
	}
}

func TestQuote_RoundsTotalOnce(t *testing.T) {
	calc := NewCalculator(fixedRate(0.33333))
	q := calc.Quote(unit(), dates(t, "2025-04-01", "2025-04-04"), capacity.Classify(1, 0, nil))

	// 80 USD * 0.33333 = 26.6664 a night; three nights come to 79.9992.
	if q.NightlyLocal != 26.67 {
		t.Errorf("nightly local = %v, want 26.67", q.NightlyLocal)
	}
	if q.TotalLocal != 80 {
		t.Errorf("total local = %v, want 80 (not 3 x 26.67)", q.TotalLocal)
	}
}

func TestQuote_MonotonicByTier(t *testing.T) {
	calc := NewCalculator(fixedRate(950.5))
	dr := dates(t, "2025-05-10", "2025-05-14")

	prev := -1.0
	for guests := 1; guests <= 6; guests++ {
		q := calc.Quote(unit(), dr, capacity.Classify(guests, 0, nil))
		if q.NightlyLocal < prev {
			t.Fatalf("nightly price dropped at %d guests: %v < %v", guests, q.NightlyLocal, prev)
		}
		prev = q.NightlyLocal
	}
	if q := calc.Quote(unit(), dr, capacity.Classify(6, 0, nil)); q.Tier != MaxTier || q.NightlyUSD != 140 {
		t.Errorf("6 guests should collapse to tier 4 at 140 USD, got tier %d at %v", q.Tier, q.NightlyUSD)
	}
}

func TestQuote_TierCountsEveryGuest(t *testing.T) {
	calc := NewCalculator(fixedRate(1))
	dr := dates(t, "2025-05-10", "2025-05-11")

	// A 12-year-old is an adult for capacity but counts once for the tier,
	// the same as a 5-year-old.
	teen := calc.Quote(unit(), dr, capacity.Classify(2, 1, []int{12}))
	kid := calc.Quote(unit(), dr, capacity.Classify(2, 1, []int{5}))
	if teen.Tier != 3 || kid.Tier != 3 || teen.TotalLocal != kid.TotalLocal {
		t.Errorf("teen tier %d (%v), kid tier %d (%v)", teen.Tier, teen.TotalLocal, kid.Tier, kid.TotalLocal)
	}
}

func TestNightlyRateUSD_GapsInTable(t *testing.T) {
	u := model.Unit{ID: "x", BasePrices: map[int]float64{1: 50, 3: 90}}
	tests := map[int]float64{1: 50, 2: 50, 3: 90, 4: 90}
	for tier, want := range tests {
		if got := NightlyRateUSD(u, tier); got != want {
			t.Errorf("tier %d: got %v, want %v", tier, got, want)
		}
	}
}

func TestQuote_Nights(t *testing.T) {
	calc := NewCalculator(fixedRate(1))
	q := calc.Quote(unit(), dates(t, "2025-03-01", "2025-03-05"), capacity.Classify(2, 0, nil))
	if q.Nights != 4 {
		t.Errorf("nights = %d, want 4", q.Nights)
	}
}
