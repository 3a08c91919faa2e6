// Package pricing quotes stays: a guest-tier nightly base rate in USD,
// converted to local currency and adjusted by a check-in-month season factor.
package pricing

import (
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/catalog"
	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// MaxTier is the highest guest tier; larger parties are priced at it.
const MaxTier = 4

// Rates supplies the cached exchange rate. It must not block.
type Rates interface {
	Rate() float64
	LocalCurrency() string
}

// Calculator prices stays at the current exchange rate.
type Calculator struct {
	rates Rates
}

// NewCalculator constructs a Calculator.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// SeasonFor returns the season and multiplier for a check-in month.
func SeasonFor(month time.Month) (model.Season, float64) {
	switch month {
	case time.December, time.January, time.February, time.March:
		return model.SeasonPeak, 1.20
	case time.July, time.August, time.September:
		return model.SeasonHigh, 1.10
	}
	return model.SeasonStandard, 1.00
}

// TierFor maps a guest count onto tiers 1..MaxTier.
func TierFor(guests int) int {
	switch {
	case guests < 1:
		return 1
	case guests > MaxTier:
		return MaxTier
	}
	return guests
}

// NightlyRateUSD returns the highest price among the unit's tiers not above
// the requested one, so prices never drop as the party grows.
func NightlyRateUSD(u model.Unit, tier int) float64 {
	tiers := catalog.Tiers(u)
	if len(tiers) == 0 {
		return 0
	}
	rate := u.BasePrices[tiers[0]]
	for _, t := range tiers {
		if t > tier {
			break
		}
		if p := u.BasePrices[t]; p > rate {
			rate = p
		}
	}
	return rate
}

// Quote prices a stay. The season factor of the check-in month applies to
// every night, including nights that fall in another season.
func (c *Calculator) Quote(u model.Unit, dr model.DateRange, g model.GuestComposition) model.PriceQuote {
	rate := c.rates.Rate()
	tier := TierFor(g.TotalGuests())
	season, factor := SeasonFor(dr.CheckIn.Month())
	nights := dr.Nights()

	// Nightly figures are rounded for display only; the total is rounded once.
	nightlyUSD := NightlyRateUSD(u, tier)
	nightlyLocal := model.Round2(nightlyUSD * rate)
	seasonal := model.Round2(nightlyUSD * rate * factor)
	totalLocal := model.Round2(nightlyUSD * rate * factor * float64(nights))

	var totalUSD float64
	if rate > 0 {
		totalUSD = model.Round2(totalLocal / rate)
	}

	return model.PriceQuote{
		UnitID:               u.ID,
		Tier:                 tier,
		Nights:               nights,
		NightlyUSD:           nightlyUSD,
		NightlyLocal:         nightlyLocal,
		NightlyLocalSeasonal: seasonal,
		TotalLocal:           totalLocal,
		TotalUSD:             totalUSD,
		ExchangeRate:         rate,
		SeasonalFactor:       factor,
		Season:               season,
		Currency:             c.rates.LocalCurrency(),
	}
}

// ToUSD converts a local amount at the current rate, rounded to cents.
func (c *Calculator) ToUSD(local float64) float64 {
	rate := c.rates.Rate()
	if rate <= 0 {
		return 0
	}
	return model.Round2(local / rate)
}
