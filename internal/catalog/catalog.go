// Package catalog holds the static description of the villa's rentable units.
// It is loaded once at startup and read-only afterwards.
package catalog

import (
	"fmt"
	"sort"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

// Catalog is an immutable, id-indexed set of units.
type Catalog struct {
	units []model.Unit
	byID  map[string]int
}

// New validates units and builds a Catalog. Order is preserved for listing.
func New(units []model.Unit) (*Catalog, error) {
	c := &Catalog{
		units: make([]model.Unit, 0, len(units)),
		byID:  make(map[string]int, len(units)),
	}
	for _, u := range units {
		if err := validate(u); err != nil {
			return nil, err
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate unit id %q", u.ID)
		}
		c.byID[u.ID] = len(c.units)
		c.units = append(c.units, copyUnit(u))
	}
	return c, nil
}

func validate(u model.Unit) error {
	switch {
	case u.ID == "":
		return fmt.Errorf("catalog: unit id is required")
	case u.MaxAdults <= 0 || u.MaxOccupancy <= 0:
		return fmt.Errorf("catalog: unit %q needs positive max_adults and max_occupancy", u.ID)
	case u.MaxChildren < 0:
		return fmt.Errorf("catalog: unit %q has negative max_children", u.ID)
	}
	if _, ok := u.BasePrices[1]; !ok {
		return fmt.Errorf("catalog: unit %q has no price for tier 1", u.ID)
	}
	for tier, price := range u.BasePrices {
		if tier < 1 || price < 0 {
			return fmt.Errorf("catalog: unit %q has invalid price tier %d=%v", u.ID, tier, price)
		}
	}
	return nil
}

// ListUnits returns every unit in catalog order. The result is empty, never
// an error, when no units are configured.
func (c *Catalog) ListUnits() []model.Unit {
	out := make([]model.Unit, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, copyUnit(u))
	}
	return out
}

// GetUnit returns the unit with the given id or model.ErrUnitNotFound.
func (c *Catalog) GetUnit(id string) (model.Unit, error) {
	i, ok := c.byID[id]
	if !ok {
		return model.Unit{}, fmt.Errorf("%w: %s", model.ErrUnitNotFound, id)
	}
	return copyUnit(c.units[i]), nil
}

// Tiers returns the unit's priced guest tiers in ascending order.
func Tiers(u model.Unit) []int {
	tiers := make([]int, 0, len(u.BasePrices))
	for t := range u.BasePrices {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	return tiers
}

func copyUnit(u model.Unit) model.Unit {
	prices := make(map[int]float64, len(u.BasePrices))
	for k, v := range u.BasePrices {
		prices[k] = v
	}
	u.BasePrices = prices
	u.Amenities = append([]string(nil), u.Amenities...)
	return u
}

// Default is the built-in two-floor villa used when no units file is configured.
func Default() []model.Unit {
	return []model.Unit{
		{
			ID:           "ground-floor",
			Name:         "Ground Floor",
			MaxAdults:    4,
			MaxChildren:  2,
			MaxOccupancy: 4,
			BasePrices:   map[int]float64{1: 80, 2: 100, 3: 120, 4: 140},
			CheckInTime:  "15:00",
			CheckOutTime: "11:00",
			Amenities:    []string{"wifi", "air-conditioning", "kitchen", "garden access", "parking"},
		},
		{
			ID:           "first-floor",
			Name:         "First Floor",
			MaxAdults:    6,
			MaxChildren:  3,
			MaxOccupancy: 6,
			BasePrices:   map[int]float64{1: 90, 2: 115, 3: 140, 4: 165},
			CheckInTime:  "15:00",
			CheckOutTime: "11:00",
			Amenities:    []string{"wifi", "air-conditioning", "kitchen", "balcony", "sea view", "parking"},
		},
	}
}
