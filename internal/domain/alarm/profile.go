package alarm

import (
	"fmt"
	"strings"
)

// Priority selects the alarm topology and the range table used for checks.
type Priority string

const (
	// PriorityHigh is the ten-pulse high priority burst.
	PriorityHigh Priority = "high"
	// PriorityLow is the one- or two-pulse low priority burst.
	PriorityLow Priority = "low"
)

// ParsePriority converts user input into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityLow:
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownPriority)
	}
}

// String implements fmt.Stringer.
func (p Priority) String() string {
	return string(p)
}

// PulseTiming describes the envelope timing of one pulse.
type PulseTiming struct {
	// SampleRate is the output sample rate in Hz.
	SampleRate int
	// PulseDurationMs is measured from the 90% mark of the rise to the 90% mark of the fall.
	PulseDurationMs float64
	// RiseTimePct is the 10%-90% rise time as a percentage of the pulse duration.
	RiseTimePct float64
	// FallTimePct is the 90%-10% fall time as a percentage of the pulse duration.
	FallTimePct float64
	// PulseSpacingMs is measured from the 90% mark of the fall to the 90% mark of the next rise.
	PulseSpacingMs float64
}

// SamplesFromMs converts milliseconds to a whole number of samples, truncating.
func (t PulseTiming) SamplesFromMs(ms float64) int {
	return int(ms * 0.001 * float64(t.SampleRate))
}

// DurationSamples returns the nominal pulse duration in samples.
func (t PulseTiming) DurationSamples() int {
	return t.SamplesFromMs(t.PulseDurationMs)
}

// RiseSamples returns the 10%-90% rise time in samples.
func (t PulseTiming) RiseSamples() int {
	return int(t.RiseTimePct / 100.0 * float64(t.DurationSamples()))
}

// FallSamples returns the 90%-10% fall time in samples.
func (t PulseTiming) FallSamples() int {
	return int(t.FallTimePct / 100.0 * float64(t.DurationSamples()))
}

// SpacingSamples returns the pulse spacing in samples.
func (t PulseTiming) SpacingSamples() int {
	return t.SamplesFromMs(t.PulseSpacingMs)
}

// Harmonic is one partial of a tone.
type Harmonic struct {
	// Multiplier is the integer multiple of the base frequency, 1 for the fundamental.
	Multiplier int
	// Volume is the relative amplitude of the partial.
	Volume float64
}

// Tone is the spectral content of a pulse.
type Tone struct {
	// BaseFrequency is the fundamental in Hz. Zero means the tone is absent.
	BaseFrequency float64
	// Harmonics are ordered by ascending multiplier, the first being 1.
	Harmonics []Harmonic
}

// Frequency returns the frequency of the harmonic at index i.
func (t Tone) Frequency(i int) float64 {
	return float64(t.Harmonics[i].Multiplier) * t.BaseFrequency
}

// Volumes returns the harmonic volumes in order.
func (t Tone) Volumes() []float64 {
	volumes := make([]float64, len(t.Harmonics))
	for i, h := range t.Harmonics {
		volumes[i] = h.Volume
	}

	return volumes
}

// Multipliers returns the harmonic multipliers in order.
func (t Tone) Multipliers() []int {
	multipliers := make([]int, len(t.Harmonics))
	for i, h := range t.Harmonics {
		multipliers[i] = h.Multiplier
	}

	return multipliers
}

// Clone returns a copy that does not share the harmonic slice.
func (t Tone) Clone() Tone {
	return Tone{
		BaseFrequency: t.BaseFrequency,
		Harmonics:     append([]Harmonic(nil), t.Harmonics...),
	}
}

// Pulse couples the envelope timing with the tone it carries.
type Pulse struct {
	Timing PulseTiming
	Tone   Tone
}

// Profile is the fully resolved parameter set of one alarm sound.
type Profile struct {
	// Priority selects the burst topology.
	Priority Priority
	// First is the pulse played first (pulses 1-3 of a high priority half burst).
	First Pulse
	// Second is the pulse played last (pulses 4-5, or the optional low priority pulse 2).
	Second Pulse
	// HalfBurstSpacingMs separates the two halves of a high priority burst.
	HalfBurstSpacingMs float64
	// BurstSpacingMs is the trailing silence before the burst repeats.
	BurstSpacingMs float64
	// LeadingSilenceMs is prepended without rise/fall compensation.
	LeadingSilenceMs float64
	// Gain is the target peak of the final sample sequence, in (0, 1].
	Gain float64
}

// HasSecondPulse reports whether the second pulse is part of the burst.
// High priority bursts always carry it; low priority ones only with a non-zero base frequency.
func (p *Profile) HasSecondPulse() bool {
	return p.Priority == PriorityHigh || p.Second.Tone.BaseFrequency != 0
}

// Pulses returns the pulses that are synthesized, in playing order.
func (p *Profile) Pulses() []Pulse {
	if p.HasSecondPulse() {
		return []Pulse{p.First, p.Second}
	}

	return []Pulse{p.First}
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	cloned := *p
	cloned.First.Tone = p.First.Tone.Clone()
	cloned.Second.Tone = p.Second.Tone.Clone()

	return &cloned
}
