package validation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

var (
	// ErrNonIntegerHarmonic is returned when a harmonic token is not an integer.
	ErrNonIntegerHarmonic = errors.New("harmonics contained non-integer values")
	// ErrLengthMismatch is returned when volumes and harmonics differ in count.
	ErrLengthMismatch = errors.New("volumes and harmonics differ in count")
)

// ParseHarmonics converts harmonic tokens such as "1 3 5" split into fields.
func ParseHarmonics(tokens []string) ([]int, error) {
	multipliers := make([]int, len(tokens))

	for i, token := range tokens {
		m, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", token, ErrNonIntegerHarmonic)
		}

		multipliers[i] = m
	}

	return multipliers, nil
}

// HasEnoughHarmonics reports whether at least four harmonics fall into the
// 300 Hz - 4000 Hz band. The standard only asks for four harmonics; keeping
// them in this band makes sure older listeners hear all of them.
func HasEnoughHarmonics(baseFrequency float64, harmonics []string) (bool, error) {
	multipliers, err := ParseHarmonics(harmonics)
	if err != nil {
		return false, err
	}

	return InBandCount(baseFrequency, multipliers) >= alarm.MinInBandHarmonics, nil
}

// InBandCount counts the harmonics whose frequency lies in the 300 Hz - 4000 Hz band.
func InBandCount(baseFrequency float64, multipliers []int) int {
	count := 0

	for _, m := range multipliers {
		if inBand(float64(m) * baseFrequency) {
			count++
		}
	}

	return count
}

// HasSignificantVolumesInsideDBRange reports whether at least three in-band
// harmonics after the fundamental are within ±15 dB of the fundamental's
// volume, which is four including the fundamental itself.
// volumes[0] belongs to the fundamental.
func HasSignificantVolumesInsideDBRange(volumes []float64, baseFrequency float64, harmonics []string) (bool, error) {
	if len(harmonics) < len(volumes) {
		return false, fmt.Errorf("%d volumes, %d harmonics: %w", len(volumes), len(harmonics), ErrLengthMismatch)
	}

	// The fundamental's token is never read.
	multipliers := make([]int, len(volumes))
	if len(volumes) > 1 {
		parsed, err := ParseHarmonics(harmonics[1:len(volumes)])
		if err != nil {
			return false, err
		}

		copy(multipliers[1:], parsed)
	}

	return significantCount(volumes, baseFrequency, multipliers) >= alarm.MinInBandHarmonics-1, nil
}

// significantCount counts in-band harmonics after the fundamental within the dB window.
func significantCount(volumes []float64, baseFrequency float64, multipliers []int) int {
	if len(volumes) == 0 {
		return 0
	}

	var (
		factor = alarm.DBToFactor(alarm.MaxHarmonicDiffDB)
		base   = volumes[0]
		count  = 0
	)

	for i, v := range volumes[1:] {
		if !inBand(float64(multipliers[i+1]) * baseFrequency) {
			continue
		}

		if v <= factor*base && factor*v >= base {
			count++
		}
	}

	return count
}

// VolumesOutOfDBRange returns the volumes after the first one that differ by
// more than 15 dB from it, in either direction.
func VolumesOutOfDBRange(volumes []float64) []float64 {
	if len(volumes) == 0 {
		return nil
	}

	var (
		factor     = alarm.DBToFactor(alarm.MaxHarmonicDiffDB)
		base       = volumes[0]
		outOfRange []float64
	)

	for _, v := range volumes[1:] {
		if v > factor*base {
			outOfRange = append(outOfRange, v)
		}

		if factor*v < base {
			outOfRange = append(outOfRange, v)
		}
	}

	return outOfRange
}

func inBand(frequency float64) bool {
	return frequency >= alarm.InBandMinFrequency && frequency <= alarm.InBandMaxFrequency
}
