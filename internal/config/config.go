package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// Profile is the YAML snapshot of every alarm parameter.
// A saved snapshot is loaded back as the defaults of the next run.
type Profile struct {
	// Priority selects the burst topology and the range table.
	Priority alarm.Priority `yaml:"priority"`
	// SampleRate is the output sample rate in Hz.
	SampleRate int `yaml:"sample_rate"`
	// PulseSpacingMs is shared by both pulses.
	PulseSpacingMs float64 `yaml:"pulse_spacing_ms"`
	// PulseDurationMs is shared by both pulses.
	PulseDurationMs float64 `yaml:"pulse_duration_ms"`
	// RiseTimePct is a percentage of the pulse duration.
	RiseTimePct float64 `yaml:"rise_time_pct"`
	// FallTimePct is a percentage of the pulse duration. Unset means the rise time.
	FallTimePct *float64 `yaml:"fall_time_pct,omitempty"`
	// First is the tone of the first pulse.
	First Tone `yaml:"first"`
	// Second is the tone of the second pulse. A low priority profile with a zero
	// base frequency plays a single pulse.
	Second Tone `yaml:"second"`
	// HalfBurstSpacingMs is used by high priority profiles only.
	HalfBurstSpacingMs float64 `yaml:"half_burst_spacing_ms,omitempty"`
	// BurstSpacingMs is the silence after the burst.
	BurstSpacingMs float64 `yaml:"burst_spacing_ms"`
	// LeadingSilenceMs is prepended to the burst.
	LeadingSilenceMs float64 `yaml:"leading_silence_ms"`
	// Gain is the peak of the rendered samples, in (0, 1].
	Gain float64 `yaml:"gain"`
	// Output is the path of the rendered WAV file.
	Output string `yaml:"output"`
	// Delivery configures the optional upload to a receiver.
	Delivery *Delivery `yaml:"delivery,omitempty"`
}

// Tone keeps harmonics and volumes as whitespace separated lists, the way they are typed.
type Tone struct {
	// BaseFrequency is the fundamental in Hz.
	BaseFrequency float64 `yaml:"base_frequency"`
	// Harmonics lists integer multipliers, e.g. "1 3 5 7 9".
	Harmonics string `yaml:"harmonics"`
	// Volumes lists one volume per harmonic, e.g. "1.0 0.85 0.6 0.5 0.4".
	Volumes string `yaml:"volumes"`
}

// Delivery holds the receiver connection parameters.
type Delivery struct {
	// ServerAddress is the gRPC address of the receiver.
	ServerAddress string `yaml:"server_addr"`
	// Timeout bounds a single delivery call.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// ErrNotFinite is returned for a NaN or infinite parameter.
var ErrNotFinite = errors.New("value must be a finite number")

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when the delivery section lacks an address.
	errServerSocketRequired = errors.New("server address must be provided")
	// errSampleRateRequired is returned for a missing or negative sample rate.
	errSampleRateRequired = errors.New("sample rate must be positive")
	// errGainOutOfRange is returned when the gain is outside (0, 1].
	errGainOutOfRange = errors.New("gain must be in (0, 1]")
	// errOutputRequired is returned when no output path is configured.
	errOutputRequired = errors.New("output path must be provided")
)

// DefaultFilename returns the snapshot filename used for the priority.
func DefaultFilename(p alarm.Priority) string {
	return fmt.Sprintf("alarm-tone-%s.yaml", p)
}

// Load reads a snapshot from path. Keys missing from the file keep the
// defaults of the priority the file declares.
func Load(path string) (*Profile, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var header struct {
		Priority string `yaml:"priority"`
	}

	if err := yaml.Unmarshal(contents, &header); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	priority, err := alarm.ParsePriority(header.Priority)
	if err != nil {
		return nil, fmt.Errorf("profile priority: %w", err)
	}

	profile := Defaults(priority)
	if err := yaml.Unmarshal(contents, profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	profile.Priority = priority

	if err := Validate(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Save writes the snapshot to path.
func Save(path string, profile *Profile) error {
	if profile == nil {
		return errConfigIsNotSet
	}

	if err := Validate(profile); err != nil {
		return err
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	return nil
}

// Validate checks the fields synthesis cannot do without and fills in
// defaults of the delivery section. Range findings are advisories and
// are reported by validation.CheckProfile instead.
func Validate(profile *Profile) error {
	if profile == nil {
		return errConfigIsNotSet
	}

	if _, err := alarm.LimitsFor(profile.Priority); err != nil {
		return fmt.Errorf("priority %q: %w", profile.Priority, err)
	}

	if profile.SampleRate <= 0 {
		return errSampleRateRequired
	}

	if err := checkFinite(profile); err != nil {
		return err
	}

	if profile.Gain <= 0 || profile.Gain > 1 {
		return fmt.Errorf("%w: %g", errGainOutOfRange, profile.Gain)
	}

	if profile.Output == "" {
		return errOutputRequired
	}

	if profile.Delivery == nil {
		return nil
	}

	if profile.Delivery.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, _, err := net.SplitHostPort(profile.Delivery.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	// Set default timeout if not specified
	if profile.Delivery.Timeout <= 0 {
		profile.Delivery.Timeout = DefaultTimeout
	}

	return nil
}

// checkFinite rejects NaN and infinite values, which no range check catches.
func checkFinite(profile *Profile) error {
	type field struct {
		name  string
		value float64
	}

	fields := []field{
		{"pulse_spacing_ms", profile.PulseSpacingMs},
		{"pulse_duration_ms", profile.PulseDurationMs},
		{"rise_time_pct", profile.RiseTimePct},
		{"first.base_frequency", profile.First.BaseFrequency},
		{"second.base_frequency", profile.Second.BaseFrequency},
		{"half_burst_spacing_ms", profile.HalfBurstSpacingMs},
		{"burst_spacing_ms", profile.BurstSpacingMs},
		{"leading_silence_ms", profile.LeadingSilenceMs},
		{"gain", profile.Gain},
	}

	if profile.FallTimePct != nil {
		fields = append(fields, field{"fall_time_pct", *profile.FallTimePct})
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s is %g: %w", f.name, f.value, ErrNotFinite)
		}
	}

	return nil
}

// Clone returns a deep copy of the snapshot.
func (p *Profile) Clone() *Profile {
	cloned := *p

	if p.FallTimePct != nil {
		fall := *p.FallTimePct
		cloned.FallTimePct = &fall
	}

	if p.Delivery != nil {
		delivery := *p.Delivery
		cloned.Delivery = &delivery
	}

	return &cloned
}
