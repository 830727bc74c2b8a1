package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/alarm-tone/internal/config"
	"github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/logger"
)

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

func lines(answers ...string) *strings.Reader {
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}

// TestCollect_KeepsDefaults returns the snapshot unchanged when every answer is empty.
func TestCollect_KeepsDefaults(t *testing.T) {
	t.Parallel()

	for _, priority := range []alarm.Priority{alarm.PriorityHigh, alarm.PriorityLow} {
		ctx, logs := observedContext()
		snapshot := config.Defaults(priority)

		var out bytes.Buffer

		got, err := Collect(ctx, strings.NewReader(""), &out, snapshot)
		require.NoError(t, err)
		require.Equal(t, snapshot, got)
		require.NotSame(t, snapshot, got)
		require.Contains(t, out.String(), "==> Selected sample rate: 44100 Hz")

		// The reference high priority burst spacing sits just below 2500 ms.
		if priority == alarm.PriorityHigh {
			require.Equal(t, 1, logs.Len())
			require.Equal(t, "burst_spacing_ms", logs.All()[0].ContextMap()["field"])
		} else {
			require.Zero(t, logs.Len())
		}
	}
}

// TestCollect_HighPriority walks through every question of a high priority profile.
func TestCollect_HighPriority(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()
	snapshot := config.Defaults(alarm.PriorityHigh)

	var out bytes.Buffer

	got, err := Collect(ctx, lines(
		"8",    // 48 kHz
		"100",  // pulse spacing
		"",     // pulse duration
		"",     // rise time
		"",     // fall time
		"500",  // first base frequency
		"1 2 3 4 5",
		"1 1", // wrong count, asked again
		"1 0.5 0.5 0.5 0.5",
		"",     // second base frequency
		"",     // second harmonics
		"",     // second volumes
		"800",  // half burst spacing
		"5000", // burst spacing
		"20",   // leading silence
	), &out, snapshot)
	require.NoError(t, err)

	require.Equal(t, 48000, got.SampleRate)
	require.InDelta(t, 100.0, got.PulseSpacingMs, 0)
	require.InDelta(t, 150.0, got.PulseDurationMs, 0)
	require.InDelta(t, 15.0, *got.FallTimePct, 0)
	require.Equal(t, config.Tone{BaseFrequency: 500, Harmonics: "1 2 3 4 5", Volumes: "1 0.5 0.5 0.5 0.5"}, got.First)
	require.Equal(t, snapshot.Second, got.Second)
	require.InDelta(t, 800.0, got.HalfBurstSpacingMs, 0)
	require.InDelta(t, 5000.0, got.BurstSpacingMs, 0)
	require.InDelta(t, 20.0, got.LeadingSilenceMs, 0)

	require.Contains(t, out.String(), "5 harmonics but 2 volumes")
	require.Zero(t, logs.Len())

	// The snapshot itself is untouched.
	require.Equal(t, 44100, snapshot.SampleRate)
}

// TestCollect_LowPrioritySinglePulse disables the second pulse with frequency 0.
func TestCollect_LowPrioritySinglePulse(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext()
	snapshot := config.Defaults(alarm.PriorityLow)

	var out bytes.Buffer

	got, err := Collect(ctx, lines("", "", "", "", "", "", "", "", "0", "", ""), &out, snapshot)
	require.NoError(t, err)
	require.Zero(t, got.Second.BaseFrequency)
	require.Equal(t, snapshot.Second.Harmonics, got.Second.Harmonics)
	require.Contains(t, out.String(), "NOTE: Second pulse disabled!")
	require.NotContains(t, out.String(), "Spacing between first 5 pulses")
	require.Contains(t, out.String(), "[15000ms; infinity)")
}

// TestCollect_Advisories logs out-of-range values without rejecting them.
func TestCollect_Advisories(t *testing.T) {
	t.Parallel()

	ctx, logs := observedContext()

	var out bytes.Buffer

	got, err := Collect(ctx, lines("", "10", "", "", "", "1200"), &out, config.Defaults(alarm.PriorityHigh))
	require.NoError(t, err)
	require.InDelta(t, 10.0, got.PulseSpacingMs, 0)
	require.InDelta(t, 1200.0, got.First.BaseFrequency, 0)

	var fields []any
	for _, entry := range logs.All() {
		fields = append(fields, entry.ContextMap()["field"])
	}

	require.Equal(t, []any{
		"pulse_spacing_ms",
		"fall_time_pct",
		"first.base_frequency",
		"first.harmonics",
		"first.volumes",
		"burst_spacing_ms",
	}, fields)
}

// TestCollect_Clamps applies the setter semantics to typed values.
func TestCollect_Clamps(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext()

	var out bytes.Buffer

	got, err := Collect(ctx, lines("42", "-5", "abc", "150", "-1"), &out, config.Defaults(alarm.PriorityHigh))
	require.NoError(t, err)
	require.Equal(t, 44100, got.SampleRate)
	require.Zero(t, got.PulseSpacingMs)
	require.InDelta(t, 150.0, got.PulseDurationMs, 0)
	require.InDelta(t, 100.0, got.RiseTimePct, 0)
	require.Zero(t, *got.FallTimePct)
	require.Contains(t, out.String(), `"abc" is not a number`)
}

// TestCollect_KeepsDefaultsForNonFinite ignores NaN and infinite answers.
func TestCollect_KeepsDefaultsForNonFinite(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext()

	var (
		out      bytes.Buffer
		defaults = config.Defaults(alarm.PriorityHigh)
	)

	got, err := Collect(ctx, lines("", "NaN", "+Inf", "-inf"), &out, defaults.Clone())
	require.NoError(t, err)
	require.InDelta(t, defaults.PulseSpacingMs, got.PulseSpacingMs, 0)
	require.InDelta(t, defaults.PulseDurationMs, got.PulseDurationMs, 0)
	require.InDelta(t, defaults.RiseTimePct, got.RiseTimePct, 0)
	require.Contains(t, out.String(), `"NaN" is not a number`)
	require.Contains(t, out.String(), `"+Inf" is not a number`)
}

// TestCollect_Errors gives up on lists that stay malformed.
func TestCollect_Errors(t *testing.T) {
	t.Parallel()

	ctx, _ := observedContext()

	var out bytes.Buffer

	answers := []string{"", "", "", "", "", ""}
	for range MaxAttempts {
		answers = append(answers, "1 x")
	}

	_, err := Collect(ctx, lines(answers...), &out, config.Defaults(alarm.PriorityHigh))
	require.ErrorIs(t, err, ErrTooManyAttempts)

	snapshot := config.Defaults(alarm.PriorityHigh)
	snapshot.First.Volumes = "1 1"

	_, err = Collect(ctx, strings.NewReader(""), &out, snapshot)
	require.ErrorIs(t, err, config.ErrVolumeCountMismatch)

	_, err = Collect(ctx, strings.NewReader(""), &out, config.Defaults("medium"))
	require.ErrorIs(t, err, alarm.ErrUnknownPriority)
}

// TestConfirm reads yes/no answers with a default.
func TestConfirm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	s := NewSession(lines("n", "", "Y", "maybe"), &out)
	require.False(t, s.Confirm("Save parameters as new defaults", true))
	require.True(t, s.Confirm("Save parameters as new defaults", true))
	require.True(t, s.Confirm("Upload", false))
	require.False(t, s.Confirm("Upload", false))
	require.True(t, s.Confirm("Input exhausted", true))
	require.Contains(t, out.String(), "Save parameters as new defaults [Y|n]? ")
}
