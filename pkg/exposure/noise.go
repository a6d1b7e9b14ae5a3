package exposure

import (
	"fmt"
	"math"
)

// NoisePeriod is one task or interval of a work shift: a duration in hours
// plus either an A-weighted equivalent level LAeq,T in dB(A) (the caller
// asserts weighting was already applied) or an unweighted band spectrum of
// sound pressure levels in dB to be A-weighted here. Exactly one of Level
// and Spectrum must be set.
type NoisePeriod struct {
	Name     string          `json:"name,omitempty"`
	Hours    float64         `json:"hours"`
	Level    *float64        `json:"level,omitempty"`
	Spectrum []FrequencyBand `json:"spectrum,omitempty"`
}

// NoiseSession is an ordered sequence of noise exposure periods.
type NoiseSession struct {
	Periods []NoisePeriod `json:"periods"`
}

// NoiseResult is the daily noise exposure level LEX,8h plus the noise dose
// percentage and the risk classification of the level. LEX and dose are two
// standard, non-interchangeable representations; both are always reported.
type NoiseResult struct {
	Classification

	LEX8h              float64 `json:"lex_8h"`
	DosePercent        float64 `json:"dose_percent"`
	Unit               string  `json:"unit"`
	ExceedsLowerAction bool    `json:"exceeds_lower_action"`
	ExceedsUpperAction bool    `json:"exceeds_upper_action"`
	ExceedsLimit       bool    `json:"exceeds_limit"`
	Summary            string  `json:"summary"`
}

// ComputeNoiseExposure turns a noise session into the daily exposure level
// LEX normalized to the reference period by energy equivalence,
//
//	LEX = 10·log10( Σ(10^(Lᵢ/10) · Tᵢ) / T_ref ),
//
// and the noise dose 100·Σ(Tᵢ / T_criterion(Lᵢ)) with
// T_criterion(L) = T_ref · 2^((Lc − L)/Q), where Q is the exchange rate
// (default 3 dB) and Lc the criterion level (default 85 dB(A)).
func ComputeNoiseExposure(session NoiseSession, opts ...Option) (*NoiseResult, error) {
	o := newOptions(opts)
	if !(o.referenceHours > 0) || math.IsInf(o.referenceHours, 1) {
		return nil, domainErrorf("reference period must be a positive finite number of hours, got %v", o.referenceHours)
	}
	if !(o.exchangeRateDB > 0) || math.IsInf(o.exchangeRateDB, 1) {
		return nil, domainErrorf("exchange rate must be a positive finite dB value, got %v", o.exchangeRateDB)
	}
	if math.IsNaN(o.criterionLevelDB) || math.IsInf(o.criterionLevelDB, 0) {
		return nil, domainErrorf("criterion level must be a finite dB value, got %v", o.criterionLevelDB)
	}
	if len(session.Periods) == 0 {
		return nil, domainErrorf("noise session is empty")
	}

	var totalHours, energySum, dose float64
	for i, p := range session.Periods {
		label := periodLabel(p.Name, i)
		if math.IsNaN(p.Hours) || p.Hours < 0 || math.IsInf(p.Hours, 1) {
			return nil, domainErrorf("%s: duration must be a non-negative finite number of hours, got %v", label, p.Hours)
		}

		level, err := weightedPeriodLevel(label, p)
		if err != nil {
			return nil, err
		}

		energySum += math.Pow(10, level/10) * p.Hours
		criterionHours := o.referenceHours * math.Pow(2, (o.criterionLevelDB-level)/o.exchangeRateDB)
		dose += 100 * p.Hours / criterionHours
		totalHours += p.Hours
	}

	if totalHours <= 0 {
		return nil, domainErrorf("noise session has zero total duration")
	}

	lex := 10 * math.Log10(energySum/o.referenceHours)

	th := NoiseThresholds
	if o.thresholds != nil {
		th = *o.thresholds
	}
	cls, err := th.Classify(lex)
	if err != nil {
		return nil, err
	}

	steps := th.Steps()
	lower, limit := steps[0], steps[len(steps)-1]
	upper := limit
	if len(steps) >= 2 {
		upper = steps[len(steps)-2]
	}
	return &NoiseResult{
		Classification:     cls,
		LEX8h:              lex,
		DosePercent:        dose,
		Unit:               "dB(A)",
		ExceedsLowerAction: lex >= lower.Value,
		ExceedsUpperAction: lex >= upper.Value,
		ExceedsLimit:       lex >= limit.Value,
		Summary:            noiseSummary(lex, dose, lower, upper, limit),
	}, nil
}

// weightedPeriodLevel resolves the explicit level-vs-spectrum branch and
// returns the A-weighted level in dB(A) for one period.
func weightedPeriodLevel(label string, p NoisePeriod) (float64, error) {
	hasLevel := p.Level != nil
	hasSpectrum := len(p.Spectrum) > 0

	switch {
	case hasLevel && hasSpectrum:
		return 0, domainErrorf("%s: provide either a broadband level or a band spectrum, not both", label)
	case !hasLevel && !hasSpectrum:
		return 0, domainErrorf("%s: no measurement provided", label)
	case hasLevel:
		// Negative dB is a legitimate attenuation marker; only non-finite
		// levels are degenerate.
		if math.IsNaN(*p.Level) || math.IsInf(*p.Level, 0) {
			return 0, domainErrorf("%s: level must be a finite dB value, got %v", label, *p.Level)
		}
		return *p.Level, nil
	}

	var energy, prevFreq float64
	for i, b := range p.Spectrum {
		if i > 0 && b.Frequency <= prevFreq {
			return 0, domainErrorf("%s: bands must be strictly increasing by frequency (%g Hz after %g Hz)",
				label, b.Frequency, prevFreq)
		}
		prevFreq = b.Frequency
		if math.IsNaN(b.Magnitude) || math.IsInf(b.Magnitude, 0) {
			return 0, domainErrorf("%s: band level at %g Hz must be a finite dB value, got %v",
				label, b.Frequency, b.Magnitude)
		}
		w, err := WeightingFactor(CurveSoundA, b.Frequency)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", label, err)
		}
		amplitude := w * math.Pow(10, b.Magnitude/20)
		energy += amplitude * amplitude
	}
	if energy <= 0 {
		return 0, domainErrorf("%s: spectrum carries no energy", label)
	}
	return 10 * math.Log10(energy), nil
}

func noiseSummary(lex, dose float64, lower, upper, limit Threshold) string {
	base := fmt.Sprintf("LEX,8h %.2f dB(A), dose %.1f%%", lex, dose)
	switch {
	case lex >= limit.Value:
		return fmt.Sprintf("%s: exposure exceeds the limit value (%g dB(A)); immediate action is required.", base, limit.Value)
	case lex >= upper.Value:
		return fmt.Sprintf("%s: exposure exceeds the upper action value (%g dB(A)); preventive measures are needed.", base, upper.Value)
	case lex >= lower.Value:
		return fmt.Sprintf("%s: exposure exceeds the lower action value (%g dB(A)); preventive measures are needed.", base, lower.Value)
	default:
		return fmt.Sprintf("%s: exposure is within acceptable regulatory thresholds.", base)
	}
}
