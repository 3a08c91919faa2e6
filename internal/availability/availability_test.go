package availability

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

func dates(in, out string) (model.DateRange, error) {
	checkIn, err := time.Parse(model.DateLayout, in)
	if err != nil {
		return model.DateRange{}, err
	}
	checkOut, err := time.Parse(model.DateLayout, out)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.NewDateRange(checkIn, checkOut)
}

func booking(id, unit, in, out string, status model.Status) model.Reservation {
	dr, err := dates(in, out)
	if err != nil {
		panic(err)
	}
	return model.Reservation{ID: id, UnitID: unit, Dates: dr, Status: status}
}

func TestFindConflicts(t *testing.T) {
	existing := []model.Reservation{
		booking("a", "ground-floor", "2025-03-01", "2025-03-05", model.StatusConfirmed),
		booking("b", "ground-floor", "2025-03-10", "2025-03-12", model.StatusCancelled),
		booking("c", "first-floor", "2025-03-01", "2025-03-05", model.StatusPending),
		booking("d", "ground-floor", "2025-03-20", "2025-03-25", model.StatusCheckedOut),
	}

	tests := []struct {
		name    string
		in, out string
		exclude string
		want    []string
	}{
		{"overlap on last night", "2025-03-04", "2025-03-06", "", []string{"a"}},
		{"back-to-back after", "2025-03-05", "2025-03-07", "", nil},
		{"back-to-back before", "2025-02-25", "2025-03-01", "", nil},
		{"enclosing range", "2025-02-20", "2025-03-30", "", []string{"a", "d"}},
		{"cancelled ignored", "2025-03-10", "2025-03-12", "", nil},
		{"self excluded", "2025-03-02", "2025-03-04", "a", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, err := dates(tt.in, tt.out)
			if err != nil {
				t.Fatal(err)
			}
			got := FindConflicts(existing, "ground-floor", dr, tt.exclude)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d conflicts, want %v", len(got), tt.want)
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("conflict %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}
