package synth

import (
	"fmt"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

const (
	// rampSpan is the amplitude covered by the rise and fall times (10% to 90%).
	rampSpan = 0.8
	// durationMark is the amplitude from which rise samples count towards the pulse duration.
	durationMark = 0.9
	// fallHeadDivisor splits the fall time into the 100%-90% head (1/8 of the 90%-10% span).
	fallHeadDivisor = 8.0
)

// checkTiming reports the fatal timing conditions shared by envelopes and silences.
func checkTiming(timing alarm.PulseTiming) error {
	if timing.SampleRate == 0 {
		return ErrZeroSampleRate
	}

	if timing.PulseDurationMs <= 0 {
		return ErrPulseDurationUnset
	}

	if timing.RiseSamples() == 0 {
		return fmt.Errorf("%w: %v%% of %d samples", ErrZeroRiseTime, timing.RiseTimePct, timing.DurationSamples())
	}

	if timing.FallSamples() == 0 {
		return fmt.Errorf("%w: %v%% of %d samples", ErrZeroFallTime, timing.FallTimePct, timing.DurationSamples())
	}

	return nil
}

// Envelope builds the trapezoidal amplitude profile of one pulse.
//
// Timing model (a(t) is the amplification at sample t):
//
//	t_1/t_2: rise passes 10%/90%, t_2 - t_1 = rise samples
//	t_3:     rise reaches 100%
//	t_4:     fall starts
//	t_5/t_6: fall passes 90%/10%, t_6 - t_5 = fall samples
//	t_5 - t_2 is the pulse duration
//
// The rise stops before the first value above 1.0, and every rise value at or
// above 90% is taken off the plateau since it already counts as duration. The
// 100%-90% head of the fall is approximated with fall samples / 8.
func Envelope(timing alarm.PulseTiming) ([]float64, error) {
	if err := checkTiming(timing); err != nil {
		return nil, err
	}

	var (
		riseSamples = timing.RiseSamples()
		fallSamples = timing.FallSamples()
		rSlope      = rampSpan / float64(riseSamples)
		fSlope      = -rampSpan / float64(fallSamples)
		duration    = timing.DurationSamples()
		envelope    = make([]float64, 0, duration+riseSamples+fallSamples)
	)

	for s := 0; ; s++ {
		amp := rSlope * float64(s)
		if amp > 1.0 {
			break
		}

		if amp >= durationMark {
			duration--
		}

		envelope = append(envelope, amp)
	}

	startFall := float64(fallSamples) / fallHeadDivisor

	plateau := int(float64(duration) - startFall + 1)
	for range plateau {
		envelope = append(envelope, 1.0)
	}

	for s := 0; ; s++ {
		// The conversion forces rounding of the product; a fused multiply-add
		// would end the ramp one sample early on some architectures.
		amp := float64(fSlope*float64(s)) + 1.0
		if amp < 0.0 {
			break
		}

		envelope = append(envelope, amp)
	}

	for i, v := range envelope {
		if v < 0.0 || v > 1.0 {
			return nil, fmt.Errorf("%w: envelope sample %d is %v", ErrAmplitudeOutOfBounds, i, v)
		}
	}

	return envelope, nil
}
