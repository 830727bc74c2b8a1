package alarm

import "fmt"

// DiagnosticCode classifies an advisory.
type DiagnosticCode string

// Advisory codes. None of them stops synthesis.
const (
	CodeOutOfRange            DiagnosticCode = "out_of_range"
	CodeFallTimeTooLong       DiagnosticCode = "fall_time_too_long"
	CodeTooFewHarmonics       DiagnosticCode = "too_few_harmonics"
	CodeVolumesOutOfDBRange   DiagnosticCode = "volumes_out_of_db_range"
	CodePulseLevelMismatch    DiagnosticCode = "pulse_level_mismatch"
	CodeVolumeNotANumber      DiagnosticCode = "volume_not_a_number"
	CodeVolumeNotPositive     DiagnosticCode = "volume_not_positive"
	CodeVolumeAboveOne        DiagnosticCode = "volume_above_one"
	CodeVolumeCountMismatch   DiagnosticCode = "volume_count_mismatch"
	CodeHarmonicOrderUnusual  DiagnosticCode = "harmonic_order_unusual"
	CodeSampleRateUnsupported DiagnosticCode = "sample_rate_unsupported"
)

// Diagnostic is a structured advisory produced by range and level checks.
type Diagnostic struct {
	// Code classifies the advisory.
	Code DiagnosticCode
	// Field names the offending parameter, e.g. "first.base_frequency".
	Field string
	// Message is a human-readable description.
	Message string
	// Value is the offending value when there is a single one.
	Value float64
	// Limit is the violated range when applicable.
	Limit *Range
	// Values lists offending values, e.g. volumes outside the dB window.
	Values []float64
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	if d.Field == "" {
		return d.Message
	}

	return fmt.Sprintf("%s: %s", d.Field, d.Message)
}

// KV returns the diagnostic as logger key-value pairs.
func (d Diagnostic) KV() []any {
	kvs := []any{"code", string(d.Code)}
	if d.Field != "" {
		kvs = append(kvs, "field", d.Field)
	}

	if d.Limit != nil {
		kvs = append(kvs, "value", d.Value, "min", d.Limit.Min, "max", d.Limit.Max)
	}

	if len(d.Values) > 0 {
		kvs = append(kvs, "values", d.Values)
	}

	return kvs
}
