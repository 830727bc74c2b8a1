package synth

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

const (
	// pulseGapExtraMs is added to the gap between pulse 3 and pulse 4 of a high priority burst.
	pulseGapExtraMs = 10.0

	// MaxSamples bounds the length of a rendered burst: two minutes at the highest supported rate.
	MaxSamples = 96000 * 120
)

// SegmentKind tells pulses and silences apart in a burst timeline.
type SegmentKind string

const (
	// SegmentPulse is a merged pulse.
	SegmentPulse SegmentKind = "pulse"
	// SegmentSilence is a zero run.
	SegmentSilence SegmentKind = "silence"
)

// Segment is one entry of the burst timeline.
type Segment struct {
	Kind  SegmentKind
	Label string
	// Start is the index of the first sample of the segment.
	Start int
	// Length is the number of samples.
	Length int
	// NominalMs is the requested duration the segment stands for.
	NominalMs float64
}

// Burst is the assembled and scaled sample sequence of one alarm sound.
type Burst struct {
	// Samples are nominally in [-1, 1], with peak magnitude equal to the gain.
	Samples []float64
	// SampleRate is the rate the samples were synthesized at.
	SampleRate int
	// Peaks holds the unscaled peak of every synthesized pulse, in playing order.
	Peaks []float64
	// Scale is the factor applied to reach the gain.
	Scale float64
	// Segments is the timeline of pulses and silences.
	Segments []Segment
	// Diagnostics are advisories found while assembling.
	Diagnostics []alarm.Diagnostic
}

// Duration returns the playing time of the burst.
func (b *Burst) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}

	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Assemble renders the profile into a single scaled burst.
func Assemble(profile *alarm.Profile) (*Burst, error) {
	pulses := profile.Pulses()

	rate := pulses[0].Timing.SampleRate
	for _, p := range pulses[1:] {
		if p.Timing.SampleRate != rate {
			return nil, fmt.Errorf("%w: %d Hz and %d Hz", ErrSampleRateMismatch, rate, p.Timing.SampleRate)
		}
	}

	// Negated so that a NaN estimate is refused too.
	if n := EstimateSamples(profile); !(n <= MaxSamples) {
		return nil, fmt.Errorf("%w: %g samples, at most %d", ErrTooManySamples, n, MaxSamples)
	}

	// Both tones count, whether or not the second one is played.
	pulses, err := normalizeVolumes(pulses, peakVolume(profile.First.Tone, profile.Second.Tone))
	if err != nil {
		return nil, err
	}

	merged := make([]MergedPulse, len(pulses))
	for i, p := range pulses {
		if merged[i], err = SynthesizePulse(p); err != nil {
			return nil, fmt.Errorf("synthesize pulse %d: %w", i+1, err)
		}
	}

	b := &builder{
		burst: &Burst{
			SampleRate: rate,
			Peaks:      make([]float64, len(merged)),
		},
	}

	for i, m := range merged {
		b.burst.Peaks[i] = m.Peak
	}

	switch profile.Priority {
	case alarm.PriorityHigh:
		b.highPriority(profile, pulses, merged)
	case alarm.PriorityLow:
		b.lowPriority(profile, pulses, merged)
	default:
		return nil, fmt.Errorf("%q: %w", profile.Priority, alarm.ErrUnknownPriority)
	}

	if d, ok := comparePulseLevels(b.burst.Peaks); ok {
		b.burst.Diagnostics = append(b.burst.Diagnostics, d)
	}

	b.scale(profile.Gain)

	return b.burst, nil
}

// SynthesizePulse renders and merges every harmonic of one pulse.
// Harmonics are computed concurrently and merged in harmonic order.
func SynthesizePulse(pulse alarm.Pulse) (MergedPulse, error) {
	harmonics := pulse.Tone.Harmonics
	if len(harmonics) == 0 {
		return MergedPulse{}, ErrNoHarmonics
	}

	envelope, err := Envelope(pulse.Timing)
	if err != nil {
		return MergedPulse{}, fmt.Errorf("envelope: %w", err)
	}

	waves := make([][]float64, len(harmonics))

	var group errgroup.Group

	group.SetLimit(runtime.GOMAXPROCS(0))

	for i, h := range harmonics {
		group.Go(func() error {
			wave, err := Harmonic(envelope, pulse.Tone.Frequency(i), h.Volume, pulse.Timing.SampleRate)
			if err != nil {
				return fmt.Errorf("harmonic %d: %w", h.Multiplier, err)
			}

			waves[i] = wave

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return MergedPulse{}, err
	}

	return Merge(waves...)
}

// EstimateSamples returns an upper bound of the burst length in samples.
// It is computed from the magnitudes of every duration in floating point,
// so huge or NaN parameters give a huge or NaN bound rather than a wrapped
// integer. Assemble refuses profiles whose bound exceeds MaxSamples.
func EstimateSamples(profile *alarm.Profile) float64 {
	var (
		first   = profile.First.Timing
		pulse   = pulseBound(first)
		spacing = math.Abs(first.PulseSpacingMs)
		gapMs   = math.Abs(profile.LeadingSilenceMs) + math.Abs(profile.BurstSpacingMs)
		count   = 1.0
	)

	if profile.HasSecondPulse() {
		second := profile.Second.Timing

		pulse = max(pulse, pulseBound(second))
		spacing = max(spacing, math.Abs(second.PulseSpacingMs))
		count = 2
	}

	if profile.Priority == alarm.PriorityHigh {
		count = 10
		gapMs += math.Abs(profile.HalfBurstSpacingMs) +
			2*(5*spacing+math.Abs(first.PulseDurationMs)+pulseGapExtraMs)
	} else if count == 2 {
		gapMs += spacing
	}

	return count*pulse + samplesFromMs(first.SampleRate, gapMs)
}

// pulseBound is the longest envelope the timing can produce.
func pulseBound(t alarm.PulseTiming) float64 {
	duration := math.Abs(samplesFromMs(t.SampleRate, t.PulseDurationMs))

	return duration + duration*(math.Abs(t.RiseTimePct)+math.Abs(t.FallTimePct))/100*5/4 + 3
}

func samplesFromMs(rate int, ms float64) float64 {
	return ms * 0.001 * math.Abs(float64(rate))
}

// specialGapMs is the gap between pulse 3 and pulse 4 of a high priority half burst.
func specialGapMs(t alarm.PulseTiming) float64 {
	return 2*t.PulseSpacingMs + t.PulseDurationMs + pulseGapExtraMs
}

// peakVolume returns the largest harmonic volume of the tones.
func peakVolume(tones ...alarm.Tone) float64 {
	var peak float64

	for _, tone := range tones {
		for _, h := range tone.Harmonics {
			peak = max(peak, h.Volume)
		}
	}

	return peak
}

// normalizeVolumes divides every volume by maxVolume.
func normalizeVolumes(pulses []alarm.Pulse, maxVolume float64) ([]alarm.Pulse, error) {
	if maxVolume == 0 {
		return nil, ErrSilentProfile
	}

	normalized := make([]alarm.Pulse, len(pulses))
	for i, p := range pulses {
		normalized[i] = alarm.Pulse{
			Timing: p.Timing,
			Tone:   p.Tone.Clone(),
		}

		for j := range normalized[i].Tone.Harmonics {
			normalized[i].Tone.Harmonics[j].Volume /= maxVolume
		}
	}

	return normalized, nil
}

// comparePulseLevels checks the Table 3 limit on the level difference of two pulses.
func comparePulseLevels(peaks []float64) (alarm.Diagnostic, bool) {
	if len(peaks) < 2 {
		return alarm.Diagnostic{}, false
	}

	var (
		p1, p2 = peaks[0], peaks[1]
		factor = alarm.DBToFactor(alarm.MaxPulseDiffDB)
	)

	if (p2 != 0 && p1/p2 > factor) || (p1 != 0 && p2/p1 > factor) {
		return alarm.Diagnostic{
			Code:    alarm.CodePulseLevelMismatch,
			Field:   "pulses",
			Message: fmt.Sprintf("more than %gdB difference in amplitude between pulses", alarm.MaxPulseDiffDB),
			Values:  []float64{p1, p2},
		}, true
	}

	return alarm.Diagnostic{}, false
}

// builder appends segments to a burst and records the timeline.
type builder struct {
	burst *Burst
}

// pulse appends a merged pulse.
func (b *builder) pulse(number int, p MergedPulse, timing alarm.PulseTiming) {
	b.append(SegmentPulse, fmt.Sprintf("Pulse %d", number), p.Samples, timing.PulseDurationMs)
}

// silence appends a compensated zero run; a nil duration means the pulse spacing.
func (b *builder) silence(label string, timing alarm.PulseTiming, durationMs *float64) {
	nominal := timing.PulseSpacingMs
	if durationMs != nil {
		nominal = *durationMs
	}

	b.append(SegmentSilence, label, Silence(timing, durationMs), nominal)
}

func (b *builder) append(kind SegmentKind, label string, samples []float64, nominalMs float64) {
	b.burst.Segments = append(b.burst.Segments, Segment{
		Kind:      kind,
		Label:     label,
		Start:     len(b.burst.Samples),
		Length:    len(samples),
		NominalMs: nominalMs,
	})

	b.burst.Samples = append(b.burst.Samples, samples...)
}

// leadingSilence prepends an uncompensated zero run.
func (b *builder) leadingSilence(timing alarm.PulseTiming, durationMs float64) {
	samples := make([]float64, max(timing.SamplesFromMs(durationMs), 0))
	b.append(SegmentSilence, "Leading silence", samples, durationMs)
}

// highPriority lays out P1 S P1 S P1 X P2 S P2, a half-burst gap, the same again and the burst gap.
func (b *builder) highPriority(profile *alarm.Profile, pulses []alarm.Pulse, merged []MergedPulse) {
	var (
		first, second = pulses[0].Timing, pulses[1].Timing
		p1, p2        = merged[0], merged[1]
		gap           = specialGapMs(first)
	)

	b.leadingSilence(first, profile.LeadingSilenceMs)

	for half := range 2 {
		offset := half * 5

		if half > 0 {
			b.silence("Half burst spacing", second, &profile.HalfBurstSpacingMs)
		}

		b.pulse(offset+1, p1, first)
		b.silence("Pulse spacing", first, nil)
		b.pulse(offset+2, p1, first)
		b.silence("Pulse spacing", first, nil)
		b.pulse(offset+3, p1, first)
		b.silence("Pulse 3/4 spacing", first, &gap)
		b.pulse(offset+4, p2, second)
		b.silence("Pulse spacing", second, nil)
		b.pulse(offset+5, p2, second)
	}

	b.silence("Burst spacing", second, &profile.BurstSpacingMs)
}

// lowPriority lays out P1, an optional S P2, and the burst gap.
func (b *builder) lowPriority(profile *alarm.Profile, pulses []alarm.Pulse, merged []MergedPulse) {
	last := pulses[0].Timing

	b.leadingSilence(last, profile.LeadingSilenceMs)
	b.pulse(1, merged[0], last)

	if len(merged) > 1 {
		b.silence("Pulse spacing", last, nil)

		last = pulses[1].Timing
		b.pulse(2, merged[1], last)
	}

	b.silence("Burst spacing", last, &profile.BurstSpacingMs)
}

// scale brings the largest pulse peak to the gain.
func (b *builder) scale(gain float64) {
	var peak float64
	for _, p := range b.burst.Peaks {
		peak = max(peak, p)
	}

	if peak != 0 {
		b.burst.Scale = gain / peak
	}

	for i := range b.burst.Samples {
		b.burst.Samples[i] *= b.burst.Scale
	}
}
