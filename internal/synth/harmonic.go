package synth

import (
	"fmt"
	"math"
)

// Harmonic modulates the envelope with a sine carrier of the given frequency.
// The volume is clamped to [0, 1], so every sample stays within [-volume, volume].
func Harmonic(envelope []float64, frequency, volume float64, sampleRate int) ([]float64, error) {
	if sampleRate == 0 {
		return nil, ErrZeroSampleRate
	}

	volume = min(max(volume, 0.0), 1.0)
	rate := float64(sampleRate)
	wave := make([]float64, len(envelope))

	for i, amp := range envelope {
		value := amp * volume * math.Sin(2.0*math.Pi*frequency*(float64(i)/rate))
		if math.Abs(value) > 1.0 {
			return nil, fmt.Errorf("%w: sample %d of %v Hz is %v", ErrAmplitudeOutOfBounds, i, frequency, value)
		}

		wave[i] = value
	}

	return wave, nil
}
