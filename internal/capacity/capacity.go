// Package capacity classifies a party into effective adults and children and
// checks it against a unit's limits.
package capacity

import "github.com/Shivanand-hulikatti/villa-booking/internal/model"

// ChildAgeLimit is the oldest age still counted as a child.
const ChildAgeLimit = 11

// Classify splits a declared party into capacity classes. Children older than
// ChildAgeLimit count as adults. A child without a declared age counts as a
// child.
func Classify(adults, children int, childrenAges []int) model.GuestComposition {
	if adults < 0 {
		adults = 0
	}
	if children < 0 {
		children = 0
	}
	g := model.GuestComposition{
		Adults:       adults,
		Children:     children,
		ChildrenAges: make([]int, 0, children),
	}
	grownUp := 0
	for i := 0; i < children; i++ {
		if i < len(childrenAges) {
			g.ChildrenAges = append(g.ChildrenAges, childrenAges[i])
			if childrenAges[i] > ChildAgeLimit {
				grownUp++
			}
		}
	}
	g.EffectiveAdults = adults + grownUp
	g.EffectiveChildren = children - grownUp
	return g
}

// Check returns nil when the party fits the unit, or a *model.CapacityError
// naming the first broken limit. Adults are checked before the total.
func Check(g model.GuestComposition, u model.Unit) error {
	if g.EffectiveAdults > u.MaxAdults {
		return &model.CapacityError{
			UnitID:    u.ID,
			Limit:     model.LimitAdults,
			Max:       u.MaxAdults,
			Requested: g.EffectiveAdults,
		}
	}
	if g.TotalGuests() > u.MaxOccupancy {
		return &model.CapacityError{
			UnitID:    u.ID,
			Limit:     model.LimitTotal,
			Max:       u.MaxOccupancy,
			Requested: g.TotalGuests(),
		}
	}
	return nil
}

// Fits reports whether the party is within both unit limits.
func Fits(g model.GuestComposition, u model.Unit) bool {
	return Check(g, u) == nil
}
