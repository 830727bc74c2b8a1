package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPulseTimingSamples checks the millisecond and percentage conversions.
func TestPulseTimingSamples(t *testing.T) {
	t.Parallel()

	timing := PulseTiming{
		SampleRate:      1000,
		PulseDurationMs: 100,
		RiseTimePct:     20,
		FallTimePct:     20,
		PulseSpacingMs:  200,
	}

	require.Equal(t, 100, timing.DurationSamples())
	require.Equal(t, 20, timing.RiseSamples())
	require.Equal(t, 20, timing.FallSamples())
	require.Equal(t, 200, timing.SpacingSamples())

	// Truncation, not rounding.
	timing.SampleRate = 44100
	require.Equal(t, 6615, timing.SamplesFromMs(150))
	require.Equal(t, 44, timing.SamplesFromMs(1))
}

// TestParsePriority verifies accepted spellings and the error for unknown values.
func TestParsePriority(t *testing.T) {
	t.Parallel()

	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	require.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("low")
	require.NoError(t, err)
	require.Equal(t, PriorityLow, p)

	_, err = ParsePriority("medium")
	require.ErrorIs(t, err, ErrUnknownPriority)
}

// TestLimitsFor verifies the per-priority range tables.
func TestLimitsFor(t *testing.T) {
	t.Parallel()

	high, err := LimitsFor(PriorityHigh)
	require.NoError(t, err)
	require.True(t, high.HasHalfBurst)
	require.True(t, high.PulseSpacingMs.Contains(50))
	require.False(t, high.PulseSpacingMs.Contains(126))
	require.InDelta(t, 825.0, high.HalfBurstSpacingMs.Mid(), 1e-9)

	low, err := LimitsFor(PriorityLow)
	require.NoError(t, err)
	require.False(t, low.HasHalfBurst)
	require.True(t, low.BurstSpacingMs.Contains(1e9))
	require.InDelta(t, 15000.0, low.BurstSpacingMs.Mid(), 1e-9)

	_, err = LimitsFor("medium")
	require.ErrorIs(t, err, ErrUnknownPriority)
}

// TestProfilePulses verifies which pulses take part in each topology.
func TestProfilePulses(t *testing.T) {
	t.Parallel()

	profile := &Profile{Priority: PriorityLow}
	require.Len(t, profile.Pulses(), 1)

	profile.Second.Tone.BaseFrequency = 400
	require.Len(t, profile.Pulses(), 2)

	profile = &Profile{Priority: PriorityHigh}
	require.Len(t, profile.Pulses(), 2)
}

// TestProfileClone verifies the harmonic slices are not shared.
func TestProfileClone(t *testing.T) {
	t.Parallel()

	profile := &Profile{
		Priority: PriorityHigh,
		First: Pulse{Tone: Tone{
			BaseFrequency: 400,
			Harmonics:     []Harmonic{{Multiplier: 1, Volume: 1}},
		}},
	}

	cloned := profile.Clone()
	cloned.First.Tone.Harmonics[0].Volume = 0.5

	require.InDelta(t, 1.0, profile.First.Tone.Harmonics[0].Volume, 0)
}

// TestDBToFactor checks the dB conversions used by the level checks.
func TestDBToFactor(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 5.623, DBToFactor(MaxHarmonicDiffDB), 1e-3)
	require.InDelta(t, 3.162, DBToFactor(MaxPulseDiffDB), 1e-3)
}

// TestDeliveryClone verifies that Clone deep-copies the sender and handles nil safely.
func TestDeliveryClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Delivery)(nil).Clone())

	d := &Delivery{
		ID:         "id",
		FileName:   "high.wav",
		Priority:   PriorityHigh,
		Sender:     &Actor{Hostname: "Oleg Shokin", Username: "o.shokin"},
		SizeBytes:  44,
		ReceivedAt: time.Now().UTC(),
	}

	c := d.Clone()
	require.Equal(t, d, c)
	require.NotSame(t, d.Sender, c.Sender)
}
