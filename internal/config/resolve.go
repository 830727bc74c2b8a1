package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/validation"
)

// ErrVolumeCountMismatch is returned when a tone has a different number of volumes than harmonics.
var ErrVolumeCountMismatch = errors.New("volume count does not match harmonic count")

// ToneOverrides replaces parts of a Tone. Nil fields keep the snapshot value.
type ToneOverrides struct {
	BaseFrequency *float64
	Harmonics     *string
	Volumes       *string
}

// Overrides replaces parts of a Profile. Nil fields keep the snapshot value.
type Overrides struct {
	SampleRate         *int
	PulseSpacingMs     *float64
	PulseDurationMs    *float64
	RiseTimePct        *float64
	FallTimePct        *float64
	First              ToneOverrides
	Second             ToneOverrides
	HalfBurstSpacingMs *float64
	BurstSpacingMs     *float64
	LeadingSilenceMs   *float64
	Gain               *float64
	Output             *string
	ServerAddress      *string
}

// Resolve applies overrides to a copy of the snapshot and normalizes the result:
// negative durations become 0, rise and fall times are clamped to [0, 100] and
// an unset fall time takes the rise time.
func Resolve(snapshot *Profile, overrides Overrides) *Profile {
	p := snapshot.Clone()

	set(&p.SampleRate, overrides.SampleRate)
	set(&p.PulseSpacingMs, overrides.PulseSpacingMs)
	set(&p.PulseDurationMs, overrides.PulseDurationMs)
	set(&p.RiseTimePct, overrides.RiseTimePct)
	set(&p.HalfBurstSpacingMs, overrides.HalfBurstSpacingMs)
	set(&p.BurstSpacingMs, overrides.BurstSpacingMs)
	set(&p.LeadingSilenceMs, overrides.LeadingSilenceMs)
	set(&p.Gain, overrides.Gain)
	set(&p.Output, overrides.Output)
	overrides.First.apply(&p.First)
	overrides.Second.apply(&p.Second)

	if overrides.FallTimePct != nil {
		fall := *overrides.FallTimePct
		p.FallTimePct = &fall
	}

	if overrides.ServerAddress != nil {
		if p.Delivery == nil {
			p.Delivery = &Delivery{Timeout: DefaultTimeout}
		}

		p.Delivery.ServerAddress = *overrides.ServerAddress
	}

	p.PulseSpacingMs = max(0, p.PulseSpacingMs)
	p.PulseDurationMs = max(0, p.PulseDurationMs)
	p.HalfBurstSpacingMs = max(0, p.HalfBurstSpacingMs)
	p.BurstSpacingMs = max(0, p.BurstSpacingMs)
	p.LeadingSilenceMs = max(0, p.LeadingSilenceMs)
	p.RiseTimePct = clampPct(p.RiseTimePct)

	fall := p.RiseTimePct
	if p.FallTimePct != nil {
		fall = clampPct(*p.FallTimePct)
	}

	p.FallTimePct = &fall

	return p
}

// Timing returns the pulse timing shared by both pulses.
func (p *Profile) Timing() alarm.PulseTiming {
	fall := p.RiseTimePct
	if p.FallTimePct != nil {
		fall = *p.FallTimePct
	}

	return alarm.PulseTiming{
		SampleRate:      p.SampleRate,
		PulseDurationMs: p.PulseDurationMs,
		RiseTimePct:     p.RiseTimePct,
		FallTimePct:     fall,
		PulseSpacingMs:  p.PulseSpacingMs,
	}
}

// Domain converts the snapshot into a synthesizable profile.
// Volume corrections are returned as diagnostics; non-integer harmonics and
// volume count mismatches are errors.
func (p *Profile) Domain() (*alarm.Profile, []alarm.Diagnostic, error) {
	first, firstDiagnostics, err := p.First.Domain("first")
	if err != nil {
		return nil, nil, err
	}

	profile := &alarm.Profile{
		Priority:           p.Priority,
		First:              alarm.Pulse{Timing: p.Timing(), Tone: first},
		Second:             alarm.Pulse{Timing: p.Timing()},
		HalfBurstSpacingMs: p.HalfBurstSpacingMs,
		BurstSpacingMs:     p.BurstSpacingMs,
		LeadingSilenceMs:   p.LeadingSilenceMs,
		Gain:               p.Gain,
	}

	diagnostics := firstDiagnostics

	// A silent low priority second pulse is not played; its lists are not needed.
	if p.Priority == alarm.PriorityLow && p.Second.BaseFrequency == 0 {
		return profile, diagnostics, nil
	}

	second, secondDiagnostics, err := p.Second.Domain("second")
	if err != nil {
		return nil, nil, err
	}

	profile.Second.Tone = second

	return profile, append(diagnostics, secondDiagnostics...), nil
}

// Domain parses the harmonic and volume lists of the tone.
func (t Tone) Domain(field string) (alarm.Tone, []alarm.Diagnostic, error) {
	multipliers, err := validation.ParseHarmonics(strings.Fields(t.Harmonics))
	if err != nil {
		return alarm.Tone{}, nil, fmt.Errorf("%s harmonics: %w", field, err)
	}

	volumes, diagnostics := validation.ParseVolumes(strings.Fields(t.Volumes))
	for i := range diagnostics {
		diagnostics[i].Field = field + "." + diagnostics[i].Field
	}

	if len(volumes) != len(multipliers) {
		return alarm.Tone{}, nil, fmt.Errorf("%s: %d harmonics, %d volumes: %w",
			field, len(multipliers), len(volumes), ErrVolumeCountMismatch)
	}

	tone := alarm.Tone{
		BaseFrequency: t.BaseFrequency,
		Harmonics:     make([]alarm.Harmonic, len(multipliers)),
	}

	for i, m := range multipliers {
		tone.Harmonics[i] = alarm.Harmonic{Multiplier: m, Volume: volumes[i]}
	}

	return tone, diagnostics, nil
}

func (o ToneOverrides) apply(t *Tone) {
	set(&t.BaseFrequency, o.BaseFrequency)
	set(&t.Harmonics, o.Harmonics)
	set(&t.Volumes, o.Volumes)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func clampPct(v float64) float64 {
	return min(max(0, v), 100)
}
