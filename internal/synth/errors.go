package synth

import "errors"

var (
	// ErrZeroSampleRate is returned when the pulse timing has no sample rate.
	ErrZeroSampleRate = errors.New("sample rate must not be 0")
	// ErrPulseDurationUnset is returned when the pulse duration was never set.
	ErrPulseDurationUnset = errors.New("pulse duration was not set")
	// ErrZeroRiseTime is returned when the rise time truncates to 0 samples.
	ErrZeroRiseTime = errors.New("rise time must not be 0")
	// ErrZeroFallTime is returned when the fall time truncates to 0 samples.
	ErrZeroFallTime = errors.New("fall time must not be 0")
	// ErrNoHarmonics is returned when a pulse carries no harmonic at all.
	ErrNoHarmonics = errors.New("pulse has no harmonics")
	// ErrHarmonicLengthMismatch is returned when merged waveforms differ in length.
	ErrHarmonicLengthMismatch = errors.New("harmonic length mismatch")
	// ErrSilentProfile is returned when every harmonic volume is 0.
	ErrSilentProfile = errors.New("volumes of all harmonics in pulses cannot be all 0")
	// ErrSampleRateMismatch is returned when the pulses of one burst use different sample rates.
	ErrSampleRateMismatch = errors.New("pulses must share one sample rate")
	// ErrTooManySamples is returned when a burst would exceed MaxSamples.
	ErrTooManySamples = errors.New("burst is too long")
	// ErrAmplitudeOutOfBounds signals a synthesized value outside its theoretical bound.
	ErrAmplitudeOutOfBounds = errors.New("amplitude out of bounds")
)
