// Package availability detects date overlaps between a requested stay and
// existing reservations of the same unit.
package availability

import "github.com/Shivanand-hulikatti/villa-booking/internal/model"

// FindConflicts returns the non-cancelled reservations of unitID whose stay
// overlaps dr. The reservation with id excludeID is skipped so a booking
// being modified never conflicts with itself. An empty result means the unit
// is free.
func FindConflicts(existing []model.Reservation, unitID string, dr model.DateRange, excludeID string) []model.Reservation {
	var conflicts []model.Reservation
	for _, r := range existing {
		if r.UnitID != unitID || !r.Active() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if r.Dates.Overlaps(dr) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}
