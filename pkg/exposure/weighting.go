// Package exposure implements the occupational exposure metrics engine:
// frequency weighting, vibration and noise exposure normalization, and
// classification against regulatory action and limit values.
//
// All computations are pure functions over caller-supplied, immutable
// measurement data. The only process-wide state is the read-only weighting
// tables, built once at package initialization.
package exposure

import "math"

// Curve identifies a standardized frequency-weighting curve. The set of
// curves is fixed and known at design time.
type Curve int

const (
	// CurveHandArm is the Wh hand-arm vibration weighting (ISO 5349-1),
	// applied to all three axes.
	CurveHandArm Curve = iota
	// CurveWholeBodyLateral is the Wd whole-body weighting for the seated
	// x and y axes (ISO 2631-1).
	CurveWholeBodyLateral
	// CurveWholeBodyVertical is the Wk whole-body weighting for the seated
	// z axis (ISO 2631-1).
	CurveWholeBodyVertical
	// CurveSoundA is the A-weighting for sound pressure levels
	// (IEC 61672-1), expressed as a linear amplitude ratio.
	CurveSoundA
)

func (c Curve) String() string {
	switch c {
	case CurveHandArm:
		return "hand-arm (Wh)"
	case CurveWholeBodyLateral:
		return "whole-body lateral (Wd)"
	case CurveWholeBodyVertical:
		return "whole-body vertical (Wk)"
	case CurveSoundA:
		return "sound A-weighting"
	default:
		return "unknown curve"
	}
}

type tablePoint struct {
	freq   float64 // band center frequency, Hz
	factor float64 // dimensionless weighting factor, >= 0
}

// Third-octave band weighting factors for hand-arm vibration, ISO 5349-1
// Table A.2 (band-limited Wh values).
var handArmTable = []tablePoint{
	{6.3, 0.727}, {8, 0.873}, {10, 0.951}, {12.5, 0.958}, {16, 0.896},
	{20, 0.782}, {25, 0.647}, {31.5, 0.519}, {40, 0.411}, {50, 0.324},
	{63, 0.256}, {80, 0.202}, {100, 0.160}, {125, 0.127}, {160, 0.101},
	{200, 0.0799}, {250, 0.0634}, {315, 0.0503}, {400, 0.0398},
	{500, 0.0314}, {630, 0.0245}, {800, 0.0186}, {1000, 0.0135},
	{1250, 0.00894},
}

// Third-octave band weighting factors for seated whole-body vibration,
// ISO 2631-1 Table 3: Wd for the horizontal axes, Wk for the vertical axis.
var wholeBodyLateralTable = []tablePoint{
	{0.5, 0.853}, {0.63, 0.944}, {0.8, 0.992}, {1, 1.011}, {1.25, 1.008},
	{1.6, 0.968}, {2, 0.890}, {2.5, 0.776}, {3.15, 0.642}, {4, 0.512},
	{5, 0.409}, {6.3, 0.323}, {8, 0.253}, {10, 0.212}, {12.5, 0.161},
	{16, 0.125}, {20, 0.100}, {25, 0.0800}, {31.5, 0.0632}, {40, 0.0494},
	{50, 0.0388}, {63, 0.0295}, {80, 0.0211},
}

var wholeBodyVerticalTable = []tablePoint{
	{0.5, 0.418}, {0.63, 0.459}, {0.8, 0.477}, {1, 0.482}, {1.25, 0.484},
	{1.6, 0.494}, {2, 0.531}, {2.5, 0.631}, {3.15, 0.804}, {4, 0.967},
	{5, 1.039}, {6.3, 1.054}, {8, 1.036}, {10, 0.988}, {12.5, 0.902},
	{16, 0.768}, {20, 0.636}, {25, 0.513}, {31.5, 0.405}, {40, 0.314},
	{50, 0.246}, {63, 0.186}, {80, 0.132},
}

// A-weighting corrections in dB per octave/third-octave band, IEC 61672-1.
// Converted once at init to linear amplitude ratios so every curve exposes
// the same non-negative factor contract.
var soundACorrectionsDB = []tablePoint{
	{10, -70.4}, {12.5, -63.4}, {16, -56.7}, {20, -50.5}, {25, -44.7},
	{31.5, -39.4}, {40, -34.6}, {50, -30.2}, {63, -26.2}, {80, -22.5},
	{100, -19.1}, {125, -16.1}, {160, -13.4}, {200, -10.9}, {250, -8.6},
	{315, -6.6}, {400, -4.8}, {500, -3.2}, {630, -1.9}, {800, -0.8},
	{1000, 0}, {1250, 0.6}, {1600, 1.0}, {2000, 1.2}, {2500, 1.3},
	{3150, 1.2}, {4000, 1.0}, {5000, 0.5}, {6300, -0.1}, {8000, -1.1},
	{10000, -2.5}, {12500, -4.3}, {16000, -6.6}, {20000, -9.3},
}

var soundATable = func() []tablePoint {
	pts := make([]tablePoint, len(soundACorrectionsDB))
	for i, p := range soundACorrectionsDB {
		pts[i] = tablePoint{freq: p.freq, factor: math.Pow(10, p.factor/20)}
	}
	return pts
}()

func curveTable(c Curve) []tablePoint {
	switch c {
	case CurveHandArm:
		return handArmTable
	case CurveWholeBodyLateral:
		return wholeBodyLateralTable
	case CurveWholeBodyVertical:
		return wholeBodyVerticalTable
	case CurveSoundA:
		return soundATable
	default:
		return nil
	}
}

// WeightingFactor returns the dimensionless weighting factor of curve at the
// given band center frequency in Hz. Between table points the factor is
// interpolated linearly in log-frequency space; outside the table range the
// nearest boundary value is returned rather than extrapolating.
//
// Frequencies that are not strictly positive are a DomainError; an unknown
// curve is a ConfigurationError.
func WeightingFactor(c Curve, freq float64) (float64, error) {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return 0, domainErrorf("weighting frequency must be a positive finite value, got %v", freq)
	}

	table := curveTable(c)
	if table == nil {
		return 0, configErrorf("unknown weighting curve %d", int(c))
	}
	if len(table) == 0 {
		return 0, configErrorf("weighting table for %s is empty", c)
	}

	// Flat extrapolation at the boundaries avoids physically implausible
	// weighting growth outside the measured band range.
	if freq <= table[0].freq {
		return table[0].factor, nil
	}
	if freq >= table[len(table)-1].freq {
		return table[len(table)-1].factor, nil
	}

	for i := 1; i < len(table); i++ {
		lo, hi := table[i-1], table[i]
		if freq > hi.freq {
			continue
		}
		t := (math.Log(freq) - math.Log(lo.freq)) / (math.Log(hi.freq) - math.Log(lo.freq))
		return lo.factor + t*(hi.factor-lo.factor), nil
	}

	// Unreachable: the boundary checks above bracket every frequency.
	return 0, configErrorf("weighting table for %s has a gap at %g Hz", c, freq)
}
