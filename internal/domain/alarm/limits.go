package alarm

import (
	"errors"
	"math"
)

// ErrUnknownPriority is returned for priorities other than high and low.
var ErrUnknownPriority = errors.New("unknown alarm priority")

const (
	// InBandMinFrequency is the lower edge of the band where harmonics count, in Hz.
	InBandMinFrequency = 300.0
	// InBandMaxFrequency is the upper edge of the band where harmonics count, in Hz.
	InBandMaxFrequency = 4000.0
	// MinInBandHarmonics is the number of in-band harmonics a pulse needs, fundamental included.
	MinInBandHarmonics = 4
	// MaxHarmonicDiffDB is the allowed level difference of a harmonic to the fundamental.
	MaxHarmonicDiffDB = 15.0
	// MaxPulseDiffDB is the allowed level difference between any two pulses (Table 3).
	MaxPulseDiffDB = 10.0
)

// Range is an inclusive interval. A Range without Max has no upper bound.
type Range struct {
	Min float64
	Max float64
}

// Unbounded is used as Range.Max when only a lower bound applies.
var Unbounded = math.Inf(1)

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Mid returns the middle of a bounded range and the minimum of an open one.
func (r Range) Mid() float64 {
	if math.IsInf(r.Max, 1) {
		return r.Min
	}

	return (r.Min + r.Max) / 2.0
}

// Limits is the range table a Priority is checked against.
type Limits struct {
	PulseSpacingMs     Range
	PulseDurationMs    Range
	RiseTimePct        Range
	HalfBurstSpacingMs Range
	BurstSpacingMs     Range
	// HasHalfBurst is false for topologies without a half-burst gap.
	HasHalfBurst bool
}

// BaseFrequencyRange is the allowed fundamental range for every priority.
var BaseFrequencyRange = Range{Min: 150, Max: 1000}

// SampleRates lists the output rates offered for selection, in Hz.
var SampleRates = []int{8000, 9600, 12000, 16000, 19200, 24000, 32000, 44100, 48000, 96000}

// LimitsFor returns the range table for the priority.
func LimitsFor(p Priority) (Limits, error) {
	switch p {
	case PriorityHigh:
		return Limits{
			PulseSpacingMs:     Range{Min: 50, Max: 125},
			PulseDurationMs:    Range{Min: 75, Max: 200},
			RiseTimePct:        Range{Min: 10, Max: 20},
			HalfBurstSpacingMs: Range{Min: 350, Max: 1300},
			BurstSpacingMs:     Range{Min: 2500, Max: 15000},
			HasHalfBurst:       true,
		}, nil
	case PriorityLow:
		return Limits{
			PulseSpacingMs:  Range{Min: 125, Max: 250},
			PulseDurationMs: Range{Min: 125, Max: 250},
			RiseTimePct:     Range{Min: 10, Max: 20},
			BurstSpacingMs:  Range{Min: 15000, Max: Unbounded},
		}, nil
	default:
		return Limits{}, ErrUnknownPriority
	}
}

// DBToFactor converts a level difference in dB to a sound pressure ratio.
func DBToFactor(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}
