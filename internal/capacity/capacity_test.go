package capacity

import (
	"errors"
	"testing"

	"github.com/Shivanand-hulikatti/villa-booking/internal/model"
)

func groundFloor() model.Unit {
	return model.Unit{ID: "ground-floor", MaxAdults: 4, MaxChildren: 2, MaxOccupancy: 4}
}

func TestClassify_ChildAgeRule(t *testing.T) {
	tests := []struct {
		name         string
		ages         []int
		wantAdults   int
		wantChildren int
	}{
		{"eleven is a child", []int{11}, 2, 1},
		{"twelve is an adult", []int{12}, 3, 0},
		{"mixed", []int{3, 12, 11, 15}, 4, 2},
		{"missing ages count as children", nil, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := len(tt.ages)
			if tt.ages == nil {
				children = 4
			}
			g := Classify(2, children, tt.ages)
			if g.EffectiveAdults != tt.wantAdults {
				t.Errorf("effective adults = %d, want %d", g.EffectiveAdults, tt.wantAdults)
			}
			if g.EffectiveChildren != tt.wantChildren {
				t.Errorf("effective children = %d, want %d", g.EffectiveChildren, tt.wantChildren)
			}
			if g.TotalGuests() != 2+children {
				t.Errorf("total = %d, want %d", g.TotalGuests(), 2+children)
			}
		})
	}
}

func TestClassify_ExtraAgesIgnored(t *testing.T) {
	g := Classify(1, 1, []int{5, 40})
	if g.EffectiveAdults != 1 || g.EffectiveChildren != 1 {
		t.Fatalf("got adults=%d children=%d", g.EffectiveAdults, g.EffectiveChildren)
	}
	if len(g.ChildrenAges) != 1 {
		t.Errorf("ages = %v, want one entry", g.ChildrenAges)
	}
}

func TestClassify_NegativeCountsClamp(t *testing.T) {
	g := Classify(-2, -1, nil)
	if g.TotalGuests() != 0 {
		t.Errorf("total = %d, want 0", g.TotalGuests())
	}
}

func TestCheck_Boundary(t *testing.T) {
	u := groundFloor()

	if err := Check(Classify(4, 0, nil), u); err != nil {
		t.Fatalf("party at both limits rejected: %v", err)
	}
	if !Fits(Classify(2, 2, []int{4, 7}), u) {
		t.Error("2 adults + 2 children should fit")
	}

	t.Run("adults over", func(t *testing.T) {
		err := Check(Classify(5, 0, nil), u)
		var ce *model.CapacityError
		if !errors.As(err, &ce) {
			t.Fatalf("expected CapacityError, got %v", err)
		}
		if ce.Limit != model.LimitAdults || ce.Max != 4 || ce.Requested != 5 {
			t.Errorf("unexpected payload %+v", ce)
		}
		if !errors.Is(err, model.ErrCapacityExceeded) {
			t.Error("should unwrap to ErrCapacityExceeded")
		}
	})

	t.Run("total over", func(t *testing.T) {
		err := Check(Classify(3, 2, []int{2, 5}), u)
		var ce *model.CapacityError
		if !errors.As(err, &ce) {
			t.Fatalf("expected CapacityError, got %v", err)
		}
		if ce.Limit != model.LimitTotal || ce.Max != 4 || ce.Requested != 5 {
			t.Errorf("unexpected payload %+v", ce)
		}
	})

	t.Run("teen pushes adults over", func(t *testing.T) {
		err := Check(Classify(4, 1, []int{14}), u)
		var ce *model.CapacityError
		if !errors.As(err, &ce) || ce.Limit != model.LimitAdults {
			t.Fatalf("expected adults limit error, got %v", err)
		}
	})
}
