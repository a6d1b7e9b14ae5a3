package exposure

// DefaultReferenceHours is the standard reference period: an 8-hour
// working day.
const DefaultReferenceHours = 8.0

// Noise dose criterion defaults. The 3 dB exchange rate is the
// equal-energy convention of ISO 9612; jurisdictions that use a different
// rate override it per call.
const (
	DefaultExchangeRateDB   = 3.0
	DefaultCriterionLevelDB = 85.0
)

type options struct {
	referenceHours   float64
	thresholds       *Thresholds
	exchangeRateDB   float64
	criterionLevelDB float64
}

// Option adjusts a single exposure computation. There is no hidden global
// default that silently changes results: every knob travels with the call.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		referenceHours:   DefaultReferenceHours,
		exchangeRateDB:   DefaultExchangeRateDB,
		criterionLevelDB: DefaultCriterionLevelDB,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithReferenceHours overrides the reference period used for time
// normalization. Must be positive.
func WithReferenceHours(hours float64) Option {
	return func(o *options) { o.referenceHours = hours }
}

// WithThresholds replaces the built-in regulatory threshold set for
// classification.
func WithThresholds(t Thresholds) Option {
	return func(o *options) { o.thresholds = &t }
}

// WithExchangeRate overrides the dose exchange rate in dB (noise only).
func WithExchangeRate(db float64) Option {
	return func(o *options) { o.exchangeRateDB = db }
}

// WithCriterionLevel overrides the dose criterion level in dB(A)
// (noise only).
func WithCriterionLevel(db float64) Option {
	return func(o *options) { o.criterionLevelDB = db }
}
