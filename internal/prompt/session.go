package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/oshokin/alarm-tone/internal/config"
	"github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/logger"
	"github.com/oshokin/alarm-tone/internal/validation"
)

// MaxAttempts bounds how often a list is asked for again before giving up.
const MaxAttempts = 5

// ErrTooManyAttempts is returned when a list stays malformed after MaxAttempts answers.
var ErrTooManyAttempts = errors.New("too many invalid answers")

// Session reads answers line by line from one input.
type Session struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewSession creates a session reading from in and printing questions to out.
func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Collect is a one-shot helper around Session.Collect.
func Collect(ctx context.Context, in io.Reader, out io.Writer, snapshot *config.Profile) (*config.Profile, error) {
	return NewSession(in, out).Collect(ctx, snapshot)
}

// Collect asks for every parameter of the snapshot's priority and returns the
// answers as a new snapshot. The input snapshot is not modified.
func (s *Session) Collect(ctx context.Context, snapshot *config.Profile) (*config.Profile, error) {
	limits, err := alarm.LimitsFor(snapshot.Priority)
	if err != nil {
		return nil, err
	}

	p := snapshot.Clone()

	s.collectTiming(ctx, p, limits)

	if err := s.collectTone(ctx, "first", &p.First, false); err != nil {
		return nil, err
	}

	optional := p.Priority == alarm.PriorityLow
	if optional {
		s.println("NOTE: enter frequency 0 for a low priority alarm with a single pulse.")
	}

	if err := s.collectTone(ctx, "second", &p.Second, optional); err != nil {
		return nil, err
	}

	if limits.HasHalfBurst {
		p.HalfBurstSpacingMs = max(0, s.askFloat(
			fmt.Sprintf("Spacing between first 5 pulses and second 5 pulses in ms %s", formatRange(limits.HalfBurstSpacingMs, "ms")),
			p.HalfBurstSpacingMs, "ms"))
		s.selected("half burst spacing", p.HalfBurstSpacingMs, "ms")
		warnRange(ctx, "half_burst_spacing_ms", p.HalfBurstSpacingMs, limits.HalfBurstSpacingMs)
	}

	p.BurstSpacingMs = max(0, s.askFloat(
		fmt.Sprintf("Spacing between two bursts in ms %s", formatRange(limits.BurstSpacingMs, "ms")),
		p.BurstSpacingMs, "ms"))
	s.selected("burst spacing", p.BurstSpacingMs, "ms")
	warnRange(ctx, "burst_spacing_ms", p.BurstSpacingMs, limits.BurstSpacingMs)

	s.println("Some devices require a silence period at the very start")
	s.println("which is beyond IEC 60601-1-8 compliance.")

	p.LeadingSilenceMs = max(0, s.askFloat("Silence at start in ms", p.LeadingSilenceMs, "ms"))
	s.selected("silence at start", p.LeadingSilenceMs, "ms")

	return p, nil
}

// Confirm asks a yes/no question. Anything but n or N counts as yes when def is true,
// anything but y or Y counts as no otherwise.
func (s *Session) Confirm(question string, def bool) bool {
	hint := "[Y|n]"
	if !def {
		hint = "[y|N]"
	}

	answer, ok := s.ask(fmt.Sprintf("%s %s? ", question, hint))
	if !ok || answer == "" {
		return def
	}

	if def {
		return answer != "n" && answer != "N"
	}

	return answer == "y" || answer == "Y"
}

func (s *Session) collectTiming(ctx context.Context, p *config.Profile, limits alarm.Limits) {
	s.printf("Sample rate\n")

	for i, rate := range alarm.SampleRates {
		s.printf("  %d) %gkHz\n", i, float64(rate)/1000)
	}

	if answer, ok := s.ask(fmt.Sprintf("Select [0; %d] (default: %d): ", len(alarm.SampleRates)-1, p.SampleRate)); ok {
		if i, err := strconv.Atoi(answer); err == nil && i >= 0 && i < len(alarm.SampleRates) {
			p.SampleRate = alarm.SampleRates[i]
		}
	}

	s.printf("==> Selected sample rate: %d Hz\n\n", p.SampleRate)

	p.PulseSpacingMs = max(0, s.askFloat("Pulse spacing "+formatRange(limits.PulseSpacingMs, "ms"), p.PulseSpacingMs, "ms"))
	s.selected("pulse spacing", p.PulseSpacingMs, "ms")
	warnRange(ctx, "pulse_spacing_ms", p.PulseSpacingMs, limits.PulseSpacingMs)

	p.PulseDurationMs = max(0, s.askFloat("Pulse duration "+formatRange(limits.PulseDurationMs, "ms"), p.PulseDurationMs, "ms"))
	s.selected("pulse duration", p.PulseDurationMs, "ms")
	warnRange(ctx, "pulse_duration_ms", p.PulseDurationMs, limits.PulseDurationMs)

	p.RiseTimePct = clampPct(s.askFloat("Rise time "+formatRange(limits.RiseTimePct, "%"), p.RiseTimePct, "%"))
	s.selected("rise time", p.RiseTimePct, "%")
	warnRange(ctx, "rise_time_pct", p.RiseTimePct, limits.RiseTimePct)

	fallDefault := p.RiseTimePct
	if p.FallTimePct != nil {
		fallDefault = *p.FallTimePct
	}

	fall := clampPct(s.askFloat("Fall time [0%; 100%]", fallDefault, "%"))
	p.FallTimePct = &fall
	s.selected("fall time", fall, "%")

	if !validation.IsFallTimeInRange(p.Timing()) {
		logger.WarnKV(ctx, "Fall time out of range",
			"code", string(alarm.CodeFallTimeTooLong),
			"field", "fall_time_pct",
			"value", fall)
	}
}

// collectTone asks for the base frequency, the harmonics and the volumes.
// An optional tone with base frequency 0 is disabled and its lists are kept as they are.
func (s *Session) collectTone(ctx context.Context, field string, tone *config.Tone, optional bool) error {
	ordinal := "1st"
	if field == "second" {
		ordinal = "2nd"
	}

	tone.BaseFrequency = s.askFloat(
		fmt.Sprintf("Base frequency of %s pulse %s", ordinal, formatRange(alarm.BaseFrequencyRange, "Hz")),
		tone.BaseFrequency, "Hz")
	s.printf("==> Selected base frequency of %s pulse: %g\n", ordinal, tone.BaseFrequency)

	if optional && tone.BaseFrequency == 0 {
		s.println("NOTE: Second pulse disabled!")

		return nil
	}

	warnRange(ctx, field+".base_frequency", tone.BaseFrequency, alarm.BaseFrequencyRange)

	s.println("IMPORTANT NOTE: the first harmonic must be 1 and the harmonics must be in ascending order!!!")

	harmonics, err := s.askHarmonics(ctx, field, tone)
	if err != nil {
		return err
	}

	volumes, err := s.askVolumes(ctx, field, tone, len(harmonics))
	if err != nil {
		return err
	}

	ok, err := validation.HasSignificantVolumesInsideDBRange(volumes, tone.BaseFrequency, harmonics)
	if err == nil && !ok {
		logger.WarnKV(ctx, "Too few harmonics within the dB window of the fundamental",
			"code", string(alarm.CodeVolumesOutOfDBRange),
			"field", field+".volumes",
			"max_diff_db", alarm.MaxHarmonicDiffDB,
			"out_of_range", validation.VolumesOutOfDBRange(volumes))
	}

	return nil
}

func (s *Session) askHarmonics(ctx context.Context, field string, tone *config.Tone) ([]string, error) {
	for range MaxAttempts {
		answer, _ := s.ask(fmt.Sprintf("Harmonics [positive integer] (default: %s): ", tone.Harmonics))
		if answer == "" {
			answer = tone.Harmonics
		}

		harmonics := strings.Fields(answer)

		enough, err := validation.HasEnoughHarmonics(tone.BaseFrequency, harmonics)
		if err != nil || len(harmonics) == 0 {
			s.printf("*** %q is not a list of integers\n", answer)

			continue
		}

		tone.Harmonics = answer
		s.printf("==> Selected harmonics of %s pulse: %s\n", field, answer)

		if !enough {
			logger.WarnKV(ctx, "Too few harmonics in band",
				"code", string(alarm.CodeTooFewHarmonics),
				"field", field+".harmonics",
				"min", alarm.InBandMinFrequency,
				"max", alarm.InBandMaxFrequency)
		}

		return harmonics, nil
	}

	return nil, fmt.Errorf("%s harmonics: %w", field, ErrTooManyAttempts)
}

func (s *Session) askVolumes(ctx context.Context, field string, tone *config.Tone, count int) ([]float64, error) {
	for range MaxAttempts {
		answer, _ := s.ask(fmt.Sprintf("%d Volumes (default: %s): ", count, tone.Volumes))
		if answer == "" {
			answer = tone.Volumes
		}

		volumes, diagnostics := validation.ParseVolumes(strings.Fields(answer))

		if mismatch := validation.CheckVolumeCount(field+".volumes", count, len(volumes)); len(mismatch) > 0 {
			s.printf("*** %s\n", mismatch[0].Message)

			continue
		}

		for _, d := range diagnostics {
			d.Field = field + "." + d.Field
			logger.WarnKV(ctx, d.Message, d.KV()...)
		}

		tone.Volumes = answer
		s.printf("==> Selected volumes of %s pulse: %s\n", field, answer)

		return volumes, nil
	}

	return nil, fmt.Errorf("%s volumes: %w", field, config.ErrVolumeCountMismatch)
}

// askFloat returns def for empty, unreadable or non-finite answers.
func (s *Session) askFloat(question string, def float64, unit string) float64 {
	answer, ok := s.ask(fmt.Sprintf("%s (default: %g%s): ", question, def, unit))
	if !ok || answer == "" {
		return def
	}

	v, err := strconv.ParseFloat(answer, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		s.printf("*** %q is not a number, keeping %g%s\n", answer, def, unit)

		return def
	}

	return v
}

// ask prints the question and returns the trimmed answer.
// It reports false once the input is exhausted.
func (s *Session) ask(question string) (string, bool) {
	s.printf("%s", question)

	if !s.scanner.Scan() {
		s.println("")

		return "", false
	}

	return strings.TrimSpace(s.scanner.Text()), true
}

func (s *Session) selected(name string, v float64, unit string) {
	s.printf("==> Selected %s: %g %s\n\n", name, v, unit)
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

func warnRange(ctx context.Context, field string, v float64, r alarm.Range) {
	if r.Contains(v) {
		return
	}

	logger.WarnKV(ctx, "Value out of range",
		"code", string(alarm.CodeOutOfRange),
		"field", field,
		"value", v,
		"min", r.Min,
		"max", r.Max)
}

func formatRange(r alarm.Range, unit string) string {
	if r.Max == alarm.Unbounded {
		return fmt.Sprintf("[%g%s; infinity)", r.Min, unit)
	}

	return fmt.Sprintf("[%g%s; %g%s]", r.Min, unit, r.Max, unit)
}

func clampPct(v float64) float64 {
	return min(max(0, v), 100)
}
