package synth

import "github.com/oshokin/alarm-tone/internal/domain/alarm"

// tailCompensation is the share of the rise and fall samples that already counts as silence.
const tailCompensation = 0.9

// Silence returns a zero run that, placed between two pulses of the given timing,
// spans durationMs from the 90% fall mark to the 90% rise mark. A nil duration
// means the pulse spacing. Exactly 0 ms yields no samples at all.
func Silence(timing alarm.PulseTiming, durationMs *float64) []float64 {
	var samples int

	switch {
	case durationMs == nil:
		samples = timing.SpacingSamples()
	case *durationMs == 0:
		return []float64{}
	default:
		samples = timing.SamplesFromMs(*durationMs)
	}

	samples -= int(float64(timing.RiseSamples()+timing.FallSamples()) * tailCompensation)

	return make([]float64, max(samples, 0))
}
