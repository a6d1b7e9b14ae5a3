package exposure

import "fmt"

// DomainError reports invalid or degenerate measurement input: empty
// sessions, zero total duration, negative magnitudes, malformed threshold
// sets. It indicates a caller defect and is never retriable.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return "exposure: invalid input: " + e.Reason
}

func domainErrorf(format string, args ...any) error {
	return &DomainError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigurationError reports missing or unknown weighting/threshold
// configuration: an unknown curve variant or a gap in the weighting tables.
// It indicates a configuration defect, distinct from malformed input.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "exposure: configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
