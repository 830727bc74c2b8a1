package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// testProfile returns a small profile whose segment lengths are easy to count:
// 147-sample pulses and a 36-sample rise/fall compensation.
func testProfile(priority alarm.Priority) *alarm.Profile {
	tone := alarm.Tone{
		BaseFrequency: 100,
		Harmonics: []alarm.Harmonic{
			{Multiplier: 1, Volume: 0.8},
			{Multiplier: 2, Volume: 0.4},
		},
	}

	return &alarm.Profile{
		Priority:           priority,
		First:              alarm.Pulse{Timing: testTiming(), Tone: tone.Clone()},
		Second:             alarm.Pulse{Timing: testTiming(), Tone: tone.Clone()},
		HalfBurstSpacingMs: 700,
		BurstSpacingMs:     3000,
		LeadingSilenceMs:   50,
		Gain:               0.98,
	}
}

// segmentLengths extracts the timeline lengths.
func segmentLengths(b *Burst) []int {
	lengths := make([]int, len(b.Segments))
	for i, s := range b.Segments {
		lengths[i] = s.Length
	}

	return lengths
}

// TestAssemble_HighPriority checks the ten-pulse topology sample by sample count.
func TestAssemble_HighPriority(t *testing.T) {
	t.Parallel()

	burst, err := Assemble(testProfile(alarm.PriorityHigh))
	require.NoError(t, err)

	half := []int{147, 164, 147, 164, 147, 474, 147, 164, 147}

	want := []int{50}
	want = append(want, half...)
	want = append(want, 664)
	want = append(want, half...)
	want = append(want, 2964)

	require.Equal(t, want, segmentLengths(burst))
	require.Len(t, burst.Samples, 7080)
	require.Equal(t, 1000, burst.SampleRate)
	require.Len(t, burst.Peaks, 2)

	pulses := 0

	for i, s := range burst.Segments {
		if i > 0 {
			prev := burst.Segments[i-1]
			require.Equal(t, prev.Start+prev.Length, s.Start)
		}

		if s.Kind == SegmentPulse {
			pulses++
			continue
		}

		for _, v := range burst.Samples[s.Start : s.Start+s.Length] {
			require.Zero(t, v)
		}
	}

	require.Equal(t, 10, pulses)
	require.Equal(t, "Pulse 10", burst.Segments[19].Label)
	require.InDelta(t, 510.0, burst.Segments[6].NominalMs, 1e-9)
}

// TestAssemble_LowPriority checks the one- and two-pulse topologies.
func TestAssemble_LowPriority(t *testing.T) {
	t.Parallel()

	profile := testProfile(alarm.PriorityLow)
	profile.LeadingSilenceMs = 0
	profile.BurstSpacingMs = 15000

	burst, err := Assemble(profile)
	require.NoError(t, err)
	require.Equal(t, []int{0, 147, 164, 147, 14964}, segmentLengths(burst))
	require.Len(t, burst.Samples, 15422)

	// Without a second base frequency only one pulse is played.
	profile.Second.Tone.BaseFrequency = 0

	burst, err = Assemble(profile)
	require.NoError(t, err)
	require.Equal(t, []int{0, 147, 14964}, segmentLengths(burst))
	require.Len(t, burst.Peaks, 1)
}

// TestAssemble_Gain verifies the burst peak equals the configured gain.
func TestAssemble_Gain(t *testing.T) {
	t.Parallel()

	for _, priority := range []alarm.Priority{alarm.PriorityHigh, alarm.PriorityLow} {
		burst, err := Assemble(testProfile(priority))
		require.NoError(t, err)

		var peak float64
		for _, v := range burst.Samples {
			peak = max(peak, math.Abs(v))
		}

		require.InDelta(t, 0.98, peak, 1e-12, priority)
		require.Greater(t, burst.Scale, 0.0)
	}
}

// TestAssemble_Idempotent asserts identical profiles render identical samples.
func TestAssemble_Idempotent(t *testing.T) {
	t.Parallel()

	profile := testProfile(alarm.PriorityHigh)
	for m := 3; m <= 9; m += 2 {
		profile.First.Tone.Harmonics = append(profile.First.Tone.Harmonics, alarm.Harmonic{Multiplier: m, Volume: 0.3})
	}

	a, err := Assemble(profile)
	require.NoError(t, err)

	b, err := Assemble(profile)
	require.NoError(t, err)

	require.Equal(t, a.Samples, b.Samples)
	require.Equal(t, a.Peaks, b.Peaks)
}

// TestAssemble_DoesNotMutateProfile verifies normalization works on copies.
func TestAssemble_DoesNotMutateProfile(t *testing.T) {
	t.Parallel()

	profile := testProfile(alarm.PriorityHigh)

	_, err := Assemble(profile)
	require.NoError(t, err)
	require.InDelta(t, 0.8, profile.First.Tone.Harmonics[0].Volume, 0)
	require.InDelta(t, 0.4, profile.Second.Tone.Harmonics[1].Volume, 0)
}

// TestAssemble_Errors verifies the fatal profile conditions.
func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	profile := testProfile(alarm.PriorityHigh)
	for _, p := range []*alarm.Pulse{&profile.First, &profile.Second} {
		for i := range p.Tone.Harmonics {
			p.Tone.Harmonics[i].Volume = 0
		}
	}

	_, err := Assemble(profile)
	require.ErrorIs(t, err, ErrSilentProfile)

	profile = testProfile(alarm.PriorityHigh)
	profile.Second.Timing.SampleRate = 2000

	_, err = Assemble(profile)
	require.ErrorIs(t, err, ErrSampleRateMismatch)

	profile = testProfile(alarm.PriorityHigh)
	profile.Second.Timing.FallTimePct = 0

	_, err = Assemble(profile)
	require.ErrorIs(t, err, ErrZeroFallTime)

	profile = testProfile(alarm.PriorityHigh)
	profile.Second.Tone.Harmonics = nil

	_, err = Assemble(profile)
	require.ErrorIs(t, err, ErrNoHarmonics)

	profile = testProfile("medium")

	_, err = Assemble(profile)
	require.ErrorIs(t, err, alarm.ErrUnknownPriority)
}

// TestAssemble_PulseLevelMismatch verifies the Table 3 advisory without changing the output.
func TestAssemble_PulseLevelMismatch(t *testing.T) {
	t.Parallel()

	profile := testProfile(alarm.PriorityHigh)

	burst, err := Assemble(profile)
	require.NoError(t, err)
	require.Empty(t, burst.Diagnostics)

	for i := range profile.Second.Tone.Harmonics {
		profile.Second.Tone.Harmonics[i].Volume /= 10
	}

	burst, err = Assemble(profile)
	require.NoError(t, err)
	require.Len(t, burst.Diagnostics, 1)
	require.Equal(t, alarm.CodePulseLevelMismatch, burst.Diagnostics[0].Code)
}

// TestNormalizeVolumes asserts the largest volume across all pulses becomes 1.
func TestNormalizeVolumes(t *testing.T) {
	t.Parallel()

	pulses := []alarm.Pulse{
		{Tone: alarm.Tone{Harmonics: []alarm.Harmonic{{Multiplier: 1, Volume: 0.5}, {Multiplier: 3, Volume: 0.25}}}},
		{Tone: alarm.Tone{Harmonics: []alarm.Harmonic{{Multiplier: 1, Volume: 0.4}}}},
	}

	normalized, err := normalizeVolumes(pulses, peakVolume(pulses[0].Tone, pulses[1].Tone))
	require.NoError(t, err)

	var maxVolume float64
	for _, p := range normalized {
		for _, h := range p.Tone.Harmonics {
			maxVolume = max(maxVolume, h.Volume)
		}
	}

	require.InDelta(t, 1.0, maxVolume, 0)
	require.InDelta(t, 0.5, normalized[0].Tone.Harmonics[1].Volume, 1e-12)
	require.InDelta(t, 0.8, normalized[1].Tone.Harmonics[0].Volume, 1e-12)
	require.InDelta(t, 0.5, pulses[0].Tone.Harmonics[0].Volume, 0)

	_, err = normalizeVolumes(pulses, 0)
	require.ErrorIs(t, err, ErrSilentProfile)
}

// TestAssemble_NormalizesWithUnplayedSecondTone keeps the volumes of a disabled
// low priority second tone in the normalization reference.
func TestAssemble_NormalizesWithUnplayedSecondTone(t *testing.T) {
	t.Parallel()

	single := func(secondVolumes ...float64) *alarm.Profile {
		profile := testProfile(alarm.PriorityLow)
		profile.Second.Tone.BaseFrequency = 0

		for i, v := range secondVolumes {
			profile.Second.Tone.Harmonics[i].Volume = v
		}

		return profile
	}

	// Second volumes at or below the first ones leave the reference at 0.8.
	reference, err := Assemble(single(0.8, 0.4))
	require.NoError(t, err)
	require.Len(t, reference.Peaks, 1)

	louder, err := Assemble(single(1.6, 0.4))
	require.NoError(t, err)
	require.Len(t, louder.Segments, 3)
	require.InDelta(t, reference.Peaks[0]/2, louder.Peaks[0], 1e-12)

	// A silent first tone is not fatal while the unplayed second one has volume.
	profile := single(0.8, 0.4)
	for i := range profile.First.Tone.Harmonics {
		profile.First.Tone.Harmonics[i].Volume = 0
	}

	burst, err := Assemble(profile)
	require.NoError(t, err)
	require.Zero(t, burst.Peaks[0])
	require.Zero(t, burst.Scale)

	for _, s := range burst.Samples {
		require.Zero(t, s)
	}
}

// TestEstimateSamples verifies the estimate bounds the rendered length.
func TestEstimateSamples(t *testing.T) {
	t.Parallel()

	for _, priority := range []alarm.Priority{alarm.PriorityHigh, alarm.PriorityLow} {
		profile := testProfile(priority)

		burst, err := Assemble(profile)
		require.NoError(t, err)
		require.GreaterOrEqual(t, EstimateSamples(profile), float64(len(burst.Samples)), priority)
	}
}

// TestAssemble_TooManySamples refuses huge, negative and NaN durations
// before any sample count is converted to an int.
func TestAssemble_TooManySamples(t *testing.T) {
	t.Parallel()

	cases := map[string]func(p *alarm.Profile){
		"huge burst spacing":     func(p *alarm.Profile) { p.BurstSpacingMs = 1e20 },
		"negative burst spacing": func(p *alarm.Profile) { p.BurstSpacingMs = -1e20 },
		"NaN burst spacing":      func(p *alarm.Profile) { p.BurstSpacingMs = math.NaN() },
		"infinite leading":       func(p *alarm.Profile) { p.LeadingSilenceMs = math.Inf(1) },
		"huge pulse spacing":     func(p *alarm.Profile) { p.Second.Timing.PulseSpacingMs = -1e18 },
		"huge pulse duration":    func(p *alarm.Profile) { p.First.Timing.PulseDurationMs = 1e20 },
		"NaN rise time":          func(p *alarm.Profile) { p.Second.Timing.RiseTimePct = math.NaN() },
		"just above the limit":   func(p *alarm.Profile) { p.BurstSpacingMs = MaxSamples },
	}

	for name, mutate := range cases {
		for _, priority := range []alarm.Priority{alarm.PriorityHigh, alarm.PriorityLow} {
			profile := testProfile(priority)
			mutate(profile)

			require.False(t, EstimateSamples(profile) <= MaxSamples, name)

			_, err := Assemble(profile)
			require.ErrorIs(t, err, ErrTooManySamples, "%s, %s", name, priority)
		}
	}

	// The half burst gap only exists in a high priority burst.
	profile := testProfile(alarm.PriorityHigh)
	profile.HalfBurstSpacingMs = 1e20

	_, err := Assemble(profile)
	require.ErrorIs(t, err, ErrTooManySamples)
}

// TestBurstDuration checks the playing time calculation.
func TestBurstDuration(t *testing.T) {
	t.Parallel()

	b := &Burst{Samples: make([]float64, 1500), SampleRate: 1000}
	require.Equal(t, "1.5s", b.Duration().String())
	require.Zero(t, (&Burst{}).Duration())
}
