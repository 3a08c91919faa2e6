package catalog

import (
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := New(Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	units := c.ListUnits()
	if len(units) != 2 || units[0].ID != "ground-floor" || units[1].ID != "first-floor" {
		t.Fatalf("units = %+v", units)
	}

	u, err := c.GetUnit("first-floor")
	if err != nil {
		t.Fatalf("GetUnit: %v", err)
	}
	if u.MaxAdults != 6 || u.MaxOccupancy != 6 {
		t.Errorf("first-floor limits = %d/%d", u.MaxAdults, u.MaxOccupancy)
	}

	if _, err := c.GetUnit("rooftop"); !errors.Is(err, model.ErrUnitNotFound) {
		t.Errorf("unknown unit err = %v", err)
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, _ := New(Default())
	u, _ := c.GetUnit("ground-floor")
	u.BasePrices[1] = 1
	u.Amenities[0] = "pool"

	again, _ := c.GetUnit("ground-floor")
	if again.BasePrices[1] != 80 || again.Amenities[0] == "pool" {
		t.Errorf("catalog state mutated through returned unit: %+v", again)
	}
}

func TestNew_Rejects(t *testing.T) {
	valid := model.Unit{ID: "a", MaxAdults: 2, MaxOccupancy: 2, BasePrices: map[int]float64{1: 50}}
	tests := []struct {
		name  string
		units []model.Unit
	}{
		{"empty id", []model.Unit{{MaxAdults: 2, MaxOccupancy: 2, BasePrices: map[int]float64{1: 50}}}},
		{"duplicate id", []model.Unit{valid, valid}},
		{"no tier one price", []model.Unit{{ID: "b", MaxAdults: 2, MaxOccupancy: 2, BasePrices: map[int]float64{2: 50}}}},
		{"zero occupancy", []model.Unit{{ID: "c", MaxAdults: 2, BasePrices: map[int]float64{1: 50}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.units); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestEmptyCatalog(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if units := c.ListUnits(); units == nil || len(units) != 0 {
		t.Errorf("ListUnits = %v, want empty non-nil", units)
	}
}

func TestTiers(t *testing.T) {
	u := model.Unit{BasePrices: map[int]float64{3: 1, 1: 1, 2: 1}}
	got := Tiers(u)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Tiers = %v", got)
	}
}
