package synth

import (
	"fmt"
	"math"
)

// MergedPulse is the sum of all harmonics of one pulse.
type MergedPulse struct {
	// Samples is the element-wise sum of the harmonic waveforms.
	Samples []float64
	// Peak is the largest absolute sample value.
	Peak float64
}

// Merge sums equally long waveforms in the order given.
func Merge(waveforms ...[]float64) (MergedPulse, error) {
	if len(waveforms) == 0 {
		return MergedPulse{}, ErrNoHarmonics
	}

	length := len(waveforms[0])
	for i, w := range waveforms[1:] {
		if len(w) != length {
			return MergedPulse{}, fmt.Errorf(
				"%w: harmonic %d has %d samples, harmonic 0 has %d",
				ErrHarmonicLengthMismatch, i+1, len(w), length,
			)
		}
	}

	merged := MergedPulse{
		Samples: make([]float64, length),
	}

	for i := range length {
		var sum float64
		for _, w := range waveforms {
			sum += w[i]
		}

		merged.Samples[i] = sum
		merged.Peak = max(merged.Peak, math.Abs(sum))
	}

	return merged, nil
}
