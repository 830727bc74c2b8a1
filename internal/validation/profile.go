package validation

import (
	"fmt"
	"slices"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// CheckProfile runs the range, band and level checks of the profile's priority.
// It returns alarm.ErrUnknownPriority for priorities without a range table.
func CheckProfile(profile *alarm.Profile) ([]alarm.Diagnostic, error) {
	limits, err := alarm.LimitsFor(profile.Priority)
	if err != nil {
		return nil, err
	}

	var diagnostics []alarm.Diagnostic

	if !slices.Contains(alarm.SampleRates, profile.First.Timing.SampleRate) {
		diagnostics = append(diagnostics, alarm.Diagnostic{
			Code:    alarm.CodeSampleRateUnsupported,
			Field:   "sample_rate",
			Message: fmt.Sprintf("%d Hz is not one of the standard rates %v", profile.First.Timing.SampleRate, alarm.SampleRates),
			Value:   float64(profile.First.Timing.SampleRate),
		})
	}

	diagnostics = append(diagnostics, CheckTiming("first", profile.First.Timing, limits)...)
	if profile.HasSecondPulse() && profile.Second.Timing != profile.First.Timing {
		diagnostics = append(diagnostics, CheckTiming("second", profile.Second.Timing, limits)...)
	}

	diagnostics = append(diagnostics, CheckTone("first", profile.First.Tone)...)
	if profile.HasSecondPulse() {
		diagnostics = append(diagnostics, CheckTone("second", profile.Second.Tone)...)
	}

	if limits.HasHalfBurst {
		diagnostics = appendRange(diagnostics, "half_burst_spacing_ms", profile.HalfBurstSpacingMs, limits.HalfBurstSpacingMs)
	}

	diagnostics = appendRange(diagnostics, "burst_spacing_ms", profile.BurstSpacingMs, limits.BurstSpacingMs)

	return diagnostics, nil
}

// CheckTiming verifies the pulse timing against the priority's range table.
// Fall time is measured against the spacing: the next pulse must not start
// before the previous one has faded.
func CheckTiming(prefix string, timing alarm.PulseTiming, limits alarm.Limits) []alarm.Diagnostic {
	var diagnostics []alarm.Diagnostic

	diagnostics = appendRange(diagnostics, prefix+".pulse_spacing_ms", timing.PulseSpacingMs, limits.PulseSpacingMs)
	diagnostics = appendRange(diagnostics, prefix+".pulse_duration_ms", timing.PulseDurationMs, limits.PulseDurationMs)
	diagnostics = appendRange(diagnostics, prefix+".rise_time_pct", timing.RiseTimePct, limits.RiseTimePct)

	if !IsFallTimeInRange(timing) {
		diagnostics = append(diagnostics, alarm.Diagnostic{
			Code:  alarm.CodeFallTimeTooLong,
			Field: prefix + ".fall_time_pct",
			Message: fmt.Sprintf("rise and fall take %d samples, longer than the %d samples of pulse spacing",
				timing.RiseSamples()+timing.FallSamples(), timing.SpacingSamples()),
			Value: timing.FallTimePct,
		})
	}

	return diagnostics
}

// IsFallTimeInRange reports whether rise and fall together fit into the pulse spacing.
func IsFallTimeInRange(timing alarm.PulseTiming) bool {
	return timing.RiseSamples()+timing.FallSamples() <= timing.SpacingSamples()
}

// CheckTone verifies the base frequency, harmonic layout and harmonic levels.
func CheckTone(prefix string, tone alarm.Tone) []alarm.Diagnostic {
	var diagnostics []alarm.Diagnostic

	diagnostics = appendRange(diagnostics, prefix+".base_frequency", tone.BaseFrequency, alarm.BaseFrequencyRange)

	multipliers := tone.Multipliers()
	if len(multipliers) > 0 && (multipliers[0] != 1 || !slices.IsSorted(multipliers)) {
		diagnostics = append(diagnostics, alarm.Diagnostic{
			Code:    alarm.CodeHarmonicOrderUnusual,
			Field:   prefix + ".harmonics",
			Message: fmt.Sprintf("harmonics %v should start with 1 and ascend", multipliers),
		})
	}

	if InBandCount(tone.BaseFrequency, multipliers) < alarm.MinInBandHarmonics {
		diagnostics = append(diagnostics, alarm.Diagnostic{
			Code:  alarm.CodeTooFewHarmonics,
			Field: prefix + ".harmonics",
			Message: fmt.Sprintf("fewer than %d harmonics between %g Hz and %g Hz",
				alarm.MinInBandHarmonics, alarm.InBandMinFrequency, alarm.InBandMaxFrequency),
			Value: float64(InBandCount(tone.BaseFrequency, multipliers)),
		})
	}

	volumes := tone.Volumes()
	if significantCount(volumes, tone.BaseFrequency, multipliers) < alarm.MinInBandHarmonics-1 {
		diagnostics = append(diagnostics, alarm.Diagnostic{
			Code:  alarm.CodeVolumesOutOfDBRange,
			Field: prefix + ".volumes",
			Message: fmt.Sprintf("fewer than %d in-band harmonics within %g dB of the fundamental",
				alarm.MinInBandHarmonics, alarm.MaxHarmonicDiffDB),
			Values: VolumesOutOfDBRange(volumes),
		})
	}

	return diagnostics
}

func appendRange(diagnostics []alarm.Diagnostic, field string, value float64, limit alarm.Range) []alarm.Diagnostic {
	if limit.Contains(value) {
		return diagnostics
	}

	bound := limit

	return append(diagnostics, alarm.Diagnostic{
		Code:    alarm.CodeOutOfRange,
		Field:   field,
		Message: fmt.Sprintf("%g is outside %g - %g", value, limit.Min, limit.Max),
		Value:   value,
		Limit:   &bound,
	})
}
