package exposure

import (
	"fmt"
	"math"
)

// Axis is one spatial measurement axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown axis"
	}
}

// ParseAxis converts the wire representation ("x", "y", "z") to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, domainErrorf("unknown axis %q", s)
	}
}

// VibrationKind selects the exposure model: hand-arm or whole-body. The
// kind determines the weighting curve per axis, the axis combination
// convention, and the default threshold set.
type VibrationKind int

const (
	HandArm VibrationKind = iota
	WholeBody
)

func (k VibrationKind) String() string {
	switch k {
	case HandArm:
		return "hand_arm"
	case WholeBody:
		return "whole_body"
	default:
		return "unknown kind"
	}
}

// ParseVibrationKind converts the wire representation to a VibrationKind.
func ParseVibrationKind(s string) (VibrationKind, error) {
	switch s {
	case "hand_arm":
		return HandArm, nil
	case "whole_body":
		return WholeBody, nil
	default:
		return 0, configErrorf("unknown vibration kind %q", s)
	}
}

func (k VibrationKind) curveFor(axis Axis) Curve {
	if k == HandArm {
		return CurveHandArm
	}
	if axis == AxisZ {
		return CurveWholeBodyVertical
	}
	return CurveWholeBodyLateral
}

// axisFactor returns the multiplying factor applied to a weighted axis
// value before combination: 1.4 for the whole-body horizontal axes, 1.0
// otherwise (directive 2002/44/EC).
func (k VibrationKind) axisFactor(axis Axis) float64 {
	if k == WholeBody && axis != AxisZ {
		return 1.4
	}
	return 1.0
}

func (k VibrationKind) thresholds() Thresholds {
	if k == WholeBody {
		return WholeBodyThresholds
	}
	return HandArmThresholds
}

// FrequencyBand is one measured band: center frequency in Hz plus the
// measured magnitude (acceleration in m/s² or sound pressure level in dB,
// depending on context).
type FrequencyBand struct {
	Frequency float64 `json:"frequency"`
	Magnitude float64 `json:"magnitude"`
}

// AxisMeasurement is the measurement of a single axis within one exposure
// period: either a pre-weighted broadband RMS value (the caller asserts
// weighting was already applied) or an unweighted band spectrum to be
// weighted here. Exactly one of RMS and Spectrum must be set; the branch is
// explicit, never inferred.
type AxisMeasurement struct {
	Axis     Axis            `json:"axis"`
	RMS      *float64        `json:"rms,omitempty"`
	Spectrum []FrequencyBand `json:"spectrum,omitempty"`
}

// VibrationPeriod is one sub-period of a work shift: a task name, the
// exposure duration in hours, and the axes measured during it.
type VibrationPeriod struct {
	Name  string            `json:"name,omitempty"`
	Hours float64           `json:"hours"`
	Axes  []AxisMeasurement `json:"axes"`
}

// VibrationSession is an ordered sequence of exposure periods to be
// normalized together. Durations need not sum to the reference period.
type VibrationSession struct {
	Kind    VibrationKind     `json:"kind"`
	Periods []VibrationPeriod `json:"periods"`
}

// VibrationResult is the daily vibration exposure A(8) plus its risk
// classification. Immutable once produced.
type VibrationResult struct {
	Classification

	A8            float64 `json:"a8"`
	Unit          string  `json:"unit"`
	ExceedsAction bool    `json:"exceeds_action"`
	ExceedsLimit  bool    `json:"exceeds_limit"`
	Summary       string  `json:"summary"`
}

// ComputeVibrationExposure turns a vibration session into a daily exposure
// value A(8) normalized to the reference period (8 h by default) and
// classifies it against the kind's regulatory thresholds.
//
// Hand-arm periods combine the weighted axes as a vector sum
// a_hv = sqrt(ax² + ay² + az²); whole-body exposure applies the 1.4/1.4/1.0
// axis factors, accumulates each axis across periods by energy equivalence,
// and takes the dominant axis. Both models normalize with
// A(8)² = Σ(aᵢ² · Tᵢ) / T_ref.
func ComputeVibrationExposure(session VibrationSession, opts ...Option) (*VibrationResult, error) {
	o := newOptions(opts)
	if !(o.referenceHours > 0) || math.IsInf(o.referenceHours, 1) {
		return nil, domainErrorf("reference period must be a positive finite number of hours, got %v", o.referenceHours)
	}
	if session.Kind != HandArm && session.Kind != WholeBody {
		return nil, configErrorf("unknown vibration kind %d", int(session.Kind))
	}
	if len(session.Periods) == 0 {
		return nil, domainErrorf("vibration session is empty")
	}

	var totalHours, handArmSum float64
	axisSums := map[Axis]float64{}

	for i, p := range session.Periods {
		label := periodLabel(p.Name, i)
		if math.IsNaN(p.Hours) || p.Hours < 0 || math.IsInf(p.Hours, 1) {
			return nil, domainErrorf("%s: duration must be a non-negative finite number of hours, got %v", label, p.Hours)
		}
		if len(p.Axes) == 0 {
			return nil, domainErrorf("%s: no axis measurements", label)
		}

		seen := map[Axis]bool{}
		var periodSum float64
		for _, m := range p.Axes {
			if m.Axis != AxisX && m.Axis != AxisY && m.Axis != AxisZ {
				return nil, domainErrorf("%s: unknown axis %d", label, int(m.Axis))
			}
			if seen[m.Axis] {
				return nil, domainErrorf("%s: duplicate measurement for axis %s", label, m.Axis)
			}
			seen[m.Axis] = true

			aw, err := weightedAxisRMS(label, session.Kind, m)
			if err != nil {
				return nil, err
			}
			weighted := session.Kind.axisFactor(m.Axis) * aw

			if session.Kind == HandArm {
				periodSum += weighted * weighted
			} else {
				axisSums[m.Axis] += weighted * weighted * p.Hours
			}
		}

		if session.Kind == HandArm {
			handArmSum += periodSum * p.Hours
		}
		totalHours += p.Hours
	}

	if totalHours <= 0 {
		return nil, domainErrorf("vibration session has zero total duration")
	}

	var a8 float64
	if session.Kind == HandArm {
		a8 = math.Sqrt(handArmSum / o.referenceHours)
	} else {
		// Dominant axis after per-axis energy accumulation.
		for _, sum := range axisSums {
			if v := math.Sqrt(sum / o.referenceHours); v > a8 {
				a8 = v
			}
		}
	}

	th := session.Kind.thresholds()
	if o.thresholds != nil {
		th = *o.thresholds
	}
	cls, err := th.Classify(a8)
	if err != nil {
		return nil, err
	}

	steps := th.Steps()
	action, limit := steps[0], steps[len(steps)-1]
	return &VibrationResult{
		Classification: cls,
		A8:             a8,
		Unit:           "m/s²",
		ExceedsAction:  a8 >= action.Value,
		ExceedsLimit:   a8 >= limit.Value,
		Summary:        vibrationSummary(a8, action, limit),
	}, nil
}

// weightedAxisRMS resolves the explicit broadband-vs-spectrum branch and
// returns the frequency-weighted RMS for one axis.
func weightedAxisRMS(label string, kind VibrationKind, m AxisMeasurement) (float64, error) {
	hasRMS := m.RMS != nil
	hasSpectrum := len(m.Spectrum) > 0

	switch {
	case hasRMS && hasSpectrum:
		return 0, domainErrorf("%s: axis %s: provide either a broadband RMS or a band spectrum, not both", label, m.Axis)
	case !hasRMS && !hasSpectrum:
		return 0, domainErrorf("%s: axis %s: no measurement provided", label, m.Axis)
	case hasRMS:
		if math.IsNaN(*m.RMS) || *m.RMS < 0 || math.IsInf(*m.RMS, 1) {
			return 0, domainErrorf("%s: axis %s: broadband RMS must be a non-negative finite value, got %v", label, m.Axis, *m.RMS)
		}
		// Broadband values are pre-weighted by contract; used as-is.
		return *m.RMS, nil
	}

	curve := kind.curveFor(m.Axis)
	var sum, prevFreq float64
	for i, b := range m.Spectrum {
		if i > 0 && b.Frequency <= prevFreq {
			return 0, domainErrorf("%s: axis %s: bands must be strictly increasing by frequency (%g Hz after %g Hz)",
				label, m.Axis, b.Frequency, prevFreq)
		}
		prevFreq = b.Frequency
		if math.IsNaN(b.Magnitude) || b.Magnitude < 0 || math.IsInf(b.Magnitude, 1) {
			return 0, domainErrorf("%s: axis %s: band magnitude at %g Hz must be a non-negative finite value, got %v",
				label, m.Axis, b.Frequency, b.Magnitude)
		}
		w, err := WeightingFactor(curve, b.Frequency)
		if err != nil {
			return 0, fmt.Errorf("%s: axis %s: %w", label, m.Axis, err)
		}
		weighted := w * b.Magnitude
		sum += weighted * weighted
	}
	return math.Sqrt(sum), nil
}

func periodLabel(name string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("period %d", i+1)
}

func vibrationSummary(a8 float64, action, limit Threshold) string {
	switch {
	case a8 >= limit.Value:
		return fmt.Sprintf("A(8) vibration value %.3f m/s² exceeds the exposure limit value (%g m/s²); immediate action is required to reduce vibration levels.", a8, limit.Value)
	case a8 >= action.Value:
		return fmt.Sprintf("A(8) vibration value %.3f m/s² exceeds the exposure action value (%g m/s²); preventive measures should be implemented.", a8, action.Value)
	default:
		return fmt.Sprintf("A(8) vibration value %.3f m/s² is below the action value (%g m/s²); no specific action is required.", a8, action.Value)
	}
}
