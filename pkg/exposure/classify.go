package exposure

import (
	"fmt"
	"math"
	"sort"
)

// Threshold is one labeled classification boundary.
type Threshold struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Thresholds is an ordered, strictly increasing set of classification
// boundaries plus the label for values below the lowest boundary. The
// increasing invariant is checked once at construction, not per call.
type Thresholds struct {
	baseLabel string
	steps     []Threshold
}

// NewThresholds builds a threshold set. baseLabel names the band below the
// lowest boundary. The steps must be non-empty and strictly increasing by
// value; anything else is a DomainError.
func NewThresholds(baseLabel string, steps ...Threshold) (Thresholds, error) {
	if len(steps) == 0 {
		return Thresholds{}, domainErrorf("threshold set must contain at least one boundary")
	}
	for i, s := range steps {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			return Thresholds{}, domainErrorf("threshold %q has non-finite value %v", s.Label, s.Value)
		}
		if i > 0 && steps[i-1].Value >= s.Value {
			return Thresholds{}, domainErrorf("threshold values must be strictly increasing: %g is not above %g",
				s.Value, steps[i-1].Value)
		}
	}
	owned := make([]Threshold, len(steps))
	copy(owned, steps)
	return Thresholds{baseLabel: baseLabel, steps: owned}, nil
}

func mustThresholds(baseLabel string, steps ...Threshold) Thresholds {
	t, err := NewThresholds(baseLabel, steps...)
	if err != nil {
		panic(fmt.Sprintf("exposure: invalid built-in threshold set: %v", err))
	}
	return t
}

// Built-in regulatory threshold sets (directives 2002/44/EC and 2003/10/EC).
var (
	HandArmThresholds = mustThresholds("below action value",
		Threshold{Label: "above action value", Value: 2.5},
		Threshold{Label: "above limit value", Value: 5.0},
	)

	WholeBodyThresholds = mustThresholds("below action value",
		Threshold{Label: "above action value", Value: 0.5},
		Threshold{Label: "above limit value", Value: 1.15},
	)

	NoiseThresholds = mustThresholds("below lower action value",
		Threshold{Label: "above lower action value", Value: 80.0},
		Threshold{Label: "above upper action value", Value: 85.0},
		Threshold{Label: "above limit value", Value: 87.0},
	)
)

// Classification is the risk category assigned to a normalized exposure
// value plus the signed margin to the matched boundary.
type Classification struct {
	Category string  `json:"category"`
	Margin   float64 `json:"margin"`
}

// Classify finds the highest boundary the value meets or exceeds. A value
// exactly equal to a boundary belongs to the band at that boundary, not
// below it. The margin is value minus the matched boundary; when the value
// sits below the lowest boundary the margin is reported (negative) against
// that lowest boundary.
func (t Thresholds) Classify(value float64) (Classification, error) {
	if len(t.steps) == 0 {
		return Classification{}, domainErrorf("threshold set is empty")
	}
	if math.IsNaN(value) {
		return Classification{}, domainErrorf("cannot classify NaN exposure value")
	}

	// Index of the first boundary strictly above the value; the band owner
	// is the boundary just before it.
	i := sort.Search(len(t.steps), func(i int) bool { return t.steps[i].Value > value })
	if i == 0 {
		return Classification{
			Category: t.baseLabel,
			Margin:   value - t.steps[0].Value,
		}, nil
	}
	return Classification{
		Category: t.steps[i-1].Label,
		Margin:   value - t.steps[i-1].Value,
	}, nil
}

// Steps returns a copy of the ordered boundaries.
func (t Thresholds) Steps() []Threshold {
	out := make([]Threshold, len(t.steps))
	copy(out, t.steps)
	return out
}
