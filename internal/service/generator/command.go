package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-tone/internal/config"
	"github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/encoding/wav"
	"github.com/oshokin/alarm-tone/internal/logger"
	"github.com/oshokin/alarm-tone/internal/prompt"
	"github.com/oshokin/alarm-tone/internal/service/common"
	"github.com/oshokin/alarm-tone/internal/synth"
	"github.com/oshokin/alarm-tone/internal/validation"
)

// Options configures one alarm-tone run.
type Options struct {
	// Priority selects the alarm. Empty means the priority of the snapshot file.
	Priority alarm.Priority
	// ConfigPath is the snapshot file. Empty means the default file of the priority.
	ConfigPath string
	// Overrides replace snapshot values before any prompt.
	Overrides config.Overrides
	// Interactive asks for every parameter on In.
	Interactive bool
	// SaveDefaults writes the final parameters back to the snapshot file.
	SaveDefaults bool
	// Remote delivers the rendered file to the configured receiver.
	Remote bool
	// Quiet drops informational messages.
	Quiet bool
	// In is read by the interactive prompt. Defaults to os.Stdin.
	In io.Reader
	// Out receives the interactive questions. Defaults to os.Stdout.
	Out io.Writer
}

// Result describes what a run produced.
type Result struct {
	// Profile holds the parameters the sound was rendered from.
	Profile *config.Profile
	// Burst is the rendered sound.
	Burst *synth.Burst
	// Delivery is the receipt of the receiver, when the file was delivered.
	Delivery *alarm.Delivery
}

// MaxSamples bounds the length of a rendered burst.
const MaxSamples = synth.MaxSamples

var (
	// ErrPriorityMismatch is returned when the snapshot file belongs to another priority.
	ErrPriorityMismatch = errors.New("snapshot priority does not match the requested priority")
	// ErrTooManySamples is returned when the burst would exceed MaxSamples.
	ErrTooManySamples = synth.ErrTooManySamples
	// ErrNoReceiver is returned when delivery is requested without a receiver address.
	ErrNoReceiver = errors.New("no receiver address configured")
)

// Run renders the alarm sound described by the snapshot, the overrides and the
// optional answers, writes it as a WAV file and delivers it when asked to.
//
//nolint:cyclop,funlen // The run is a linear pipeline of optional steps.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "alarm-tone")

	if opts.Quiet {
		ctx = logger.WithMinLevel(ctx, zapcore.WarnLevel)
	}

	path, snapshot, err := loadSnapshot(ctx, opts)
	if err != nil {
		return nil, err
	}

	profile := config.Resolve(snapshot, opts.Overrides)
	save := opts.SaveDefaults

	if opts.Interactive {
		session := prompt.NewSession(inOrStdin(opts.In), outOrStdout(opts.Out))

		profile, err = session.Collect(ctx, profile)
		if err != nil {
			return nil, fmt.Errorf("collect parameters: %w", err)
		}

		if !save {
			save = session.Confirm("Save these values as defaults", false)
		}
	}

	if err = config.Validate(profile); err != nil {
		return nil, fmt.Errorf("validate parameters: %w", err)
	}

	domainProfile, diagnostics, err := profile.Domain()
	if err != nil {
		return nil, fmt.Errorf("convert parameters: %w", err)
	}

	// The prompt reports volume corrections and range findings as answers are accepted.
	if opts.Interactive {
		diagnostics = nil
	} else {
		advisories, err := validation.CheckProfile(domainProfile)
		if err != nil {
			return nil, fmt.Errorf("check parameters: %w", err)
		}

		diagnostics = append(diagnostics, advisories...)
	}

	logDiagnostics(ctx, diagnostics)

	if save {
		if err = config.Save(path, profile); err != nil {
			return nil, fmt.Errorf("save defaults: %w", err)
		}

		logger.InfoKV(ctx, "Defaults saved", "path", path)
	}

	burst, err := synth.Assemble(domainProfile)
	if err != nil {
		return nil, fmt.Errorf("assemble burst: %w", err)
	}

	logTimeline(ctx, burst)
	logDiagnostics(ctx, burst.Diagnostics)

	if err = wav.WriteFile(profile.Output, burst.Samples, burst.SampleRate); err != nil {
		return nil, fmt.Errorf("write sound file: %w", err)
	}

	logger.InfoKV(ctx, "Sound file written",
		"path", profile.Output,
		"priority", profile.Priority,
		"sample_rate", burst.SampleRate,
		"samples", len(burst.Samples),
		"duration", burst.Duration())

	result := &Result{
		Profile: profile,
		Burst:   burst,
	}

	if opts.Remote {
		if result.Delivery, err = deliver(ctx, profile); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// loadSnapshot reads the snapshot file, falling back to the built-in defaults
// when it does not exist yet.
func loadSnapshot(ctx context.Context, opts *Options) (string, *config.Profile, error) {
	priority := opts.Priority
	if priority == "" {
		priority = alarm.PriorityHigh
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultFilename(priority)
	}

	snapshot, err := config.Load(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.InfoKV(ctx, "No saved defaults, using built-in values", "path", path, "priority", priority)

		return path, config.Defaults(priority), nil
	case err != nil:
		return "", nil, fmt.Errorf("load defaults: %w", err)
	case opts.Priority != "" && snapshot.Priority != opts.Priority:
		return "", nil, fmt.Errorf("%w: %s has %s, requested %s",
			ErrPriorityMismatch, path, snapshot.Priority, opts.Priority)
	}

	logger.InfoKV(ctx, "Defaults loaded", "path", path, "priority", snapshot.Priority)

	return path, snapshot, nil
}

// deliver pushes the written file to the receiver of the profile.
func deliver(ctx context.Context, profile *config.Profile) (*alarm.Delivery, error) {
	if profile.Delivery == nil || profile.Delivery.ServerAddress == "" {
		return nil, ErrNoReceiver
	}

	data, err := os.ReadFile(filepath.Clean(profile.Output))
	if err != nil {
		return nil, fmt.Errorf("read sound file: %w", err)
	}

	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(ctx, profile.Delivery.ServerAddress, common.WithCallTimeout(profile.Delivery.Timeout))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Delivering sound file", "server_address", profile.Delivery.ServerAddress, "path", profile.Output)

	d, err := client.Deliver(ctx, &alarm.Upload{
		FileName: profile.Output,
		Priority: profile.Priority,
		Sender:   actor,
		Data:     data,
	})
	if err != nil {
		return nil, fmt.Errorf("deliver sound file: %w", err)
	}

	logger.InfoKV(ctx, "Sound file delivered", "id", d.ID, "received_at", d.ReceivedAt)

	return d, nil
}

func logTimeline(ctx context.Context, burst *synth.Burst) {
	for _, s := range burst.Segments {
		logger.InfoKV(ctx, fmt.Sprintf("%s: %.2fms", s.Label, s.NominalMs), "start", s.Start, "samples", s.Length)
	}
}

func logDiagnostics(ctx context.Context, diagnostics []alarm.Diagnostic) {
	for _, d := range diagnostics {
		logger.WarnKV(ctx, d.String(), d.KV()...)
	}
}

func inOrStdin(in io.Reader) io.Reader {
	if in == nil {
		return os.Stdin
	}

	return in
}

func outOrStdout(out io.Writer) io.Writer {
	if out == nil {
		return os.Stdout
	}

	return out
}
