package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/alarm-tone/internal/config"
	"github.com/oshokin/alarm-tone/internal/domain/alarm"
	"github.com/oshokin/alarm-tone/internal/logger"
	"github.com/oshokin/alarm-tone/internal/service/generator"
	"github.com/oshokin/alarm-tone/internal/version"
)

var (
	// cfgPath stores the snapshot file path.
	cfgPath string
	// logLevel is the minimum level of printed messages.
	logLevel string
	// interactive asks for every parameter.
	interactive bool
	// saveDefaults writes the final parameters to the snapshot file.
	saveDefaults bool
	// remote delivers the file to the receiver.
	remote bool
	// quiet prints warnings and errors only.
	quiet bool

	// values backs the override flags; only flags set on the command line are applied.
	values struct {
		sampleRate         int
		pulseSpacingMs     float64
		pulseDurationMs    float64
		riseTimePct        float64
		fallTimePct        float64
		firstBase          float64
		firstHarmonics     string
		firstVolumes       string
		secondBase         float64
		secondHarmonics    string
		secondVolumes      string
		halfBurstSpacingMs float64
		burstSpacingMs     float64
		leadingSilenceMs   float64
		gain               float64
		output             string
		serverAddress      string
	}

	// rootCmd represents the base command for rendering an alarm sound.
	rootCmd = &cobra.Command{
		Use:   "alarm-tone [high|low]",
		Short: "Render an IEC 60601-1-8 alarm burst into a WAV file.",
		Long: `Synthesizes a high or low priority medical alarm burst and writes it as a
mono 16-bit PCM WAV file.

Parameters come from the snapshot file of the priority (alarm-tone-high.yaml or
alarm-tone-low.yaml), or from built-in reference values when it does not exist yet.
Flags override single parameters; --interactive asks for each of them.
Values outside the ranges of the standard are reported as warnings and still rendered.

With --remote the file is delivered to the alarm-tone-receiver of the snapshot's
delivery section or of --server.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(alarm.PriorityHigh), string(alarm.PriorityLow)},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return applyLogLevel(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var priority alarm.Priority

			if len(args) > 0 {
				p, err := alarm.ParsePriority(args[0])
				if err != nil {
					return err
				}

				priority = p
			}

			_, err := generator.Run(ctx, &generator.Options{
				Priority:     priority,
				ConfigPath:   cfgPath,
				Overrides:    overrides(cmd.Flags()),
				Interactive:  interactive,
				SaveDefaults: saveDefaults,
				Remote:       remote,
				Quiet:        quiet,
				In:           cmd.InOrStdin(),
				Out:          cmd.OutOrStdout(),
			})

			return err
		},
	}
)

// Execute runs the alarm-tone CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&cfgPath, "config", "c", "", "path to the snapshot file (default alarm-tone-<priority>.yaml)")
	flags.BoolVarP(&interactive, "interactive", "i", false, "ask for every parameter")
	flags.BoolVarP(&saveDefaults, "save-defaults", "s", false, "save the parameters as defaults of the next run")
	flags.BoolVarP(&remote, "remote", "r", false, "deliver the file to the receiver")
	flags.BoolVarP(&quiet, "quiet", "q", false, "print warnings and errors only")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	flags.IntVar(&values.sampleRate, "sample-rate", 0, "sample rate in Hz")
	flags.Float64Var(&values.pulseSpacingMs, "pulse-spacing", 0, "pulse spacing in ms")
	flags.Float64Var(&values.pulseDurationMs, "pulse-duration", 0, "pulse duration in ms")
	flags.Float64Var(&values.riseTimePct, "rise-time", 0, "rise time in % of the pulse duration")
	flags.Float64Var(&values.fallTimePct, "fall-time", 0, "fall time in % of the pulse duration")
	flags.Float64Var(&values.firstBase, "first-base", 0, "base frequency of the first pulse in Hz")
	flags.StringVar(&values.firstHarmonics, "first-harmonics", "", `harmonics of the first pulse, e.g. "1 3 5 7 9"`)
	flags.StringVar(&values.firstVolumes, "first-volumes", "", `volumes of the first pulse, e.g. "1.0 0.85 0.6 0.5 0.4"`)
	flags.Float64Var(&values.secondBase, "second-base", 0, "base frequency of the second pulse in Hz, 0 disables it for low priority")
	flags.StringVar(&values.secondHarmonics, "second-harmonics", "", "harmonics of the second pulse")
	flags.StringVar(&values.secondVolumes, "second-volumes", "", "volumes of the second pulse")
	flags.Float64Var(&values.halfBurstSpacingMs, "half-burst-spacing", 0, "spacing between the two halves of a high priority burst in ms")
	flags.Float64Var(&values.burstSpacingMs, "burst-spacing", 0, "spacing between two bursts in ms")
	flags.Float64Var(&values.leadingSilenceMs, "leading-silence", 0, "silence at the start in ms")
	flags.Float64Var(&values.gain, "gain", 0, "peak amplitude in (0, 1]")
	flags.StringVarP(&values.output, "output", "o", "", "path of the WAV file")
	flags.StringVar(&values.serverAddress, "server", "", "receiver address, e.g. 10.0.0.5:50051")
}

// overrides collects the override flags set on the command line.
func overrides(flags *pflag.FlagSet) config.Overrides {
	var o config.Overrides

	setIfChanged(flags, "sample-rate", &o.SampleRate, values.sampleRate)
	setIfChanged(flags, "pulse-spacing", &o.PulseSpacingMs, values.pulseSpacingMs)
	setIfChanged(flags, "pulse-duration", &o.PulseDurationMs, values.pulseDurationMs)
	setIfChanged(flags, "rise-time", &o.RiseTimePct, values.riseTimePct)
	setIfChanged(flags, "fall-time", &o.FallTimePct, values.fallTimePct)
	setIfChanged(flags, "first-base", &o.First.BaseFrequency, values.firstBase)
	setIfChanged(flags, "first-harmonics", &o.First.Harmonics, values.firstHarmonics)
	setIfChanged(flags, "first-volumes", &o.First.Volumes, values.firstVolumes)
	setIfChanged(flags, "second-base", &o.Second.BaseFrequency, values.secondBase)
	setIfChanged(flags, "second-harmonics", &o.Second.Harmonics, values.secondHarmonics)
	setIfChanged(flags, "second-volumes", &o.Second.Volumes, values.secondVolumes)
	setIfChanged(flags, "half-burst-spacing", &o.HalfBurstSpacingMs, values.halfBurstSpacingMs)
	setIfChanged(flags, "burst-spacing", &o.BurstSpacingMs, values.burstSpacingMs)
	setIfChanged(flags, "leading-silence", &o.LeadingSilenceMs, values.leadingSilenceMs)
	setIfChanged(flags, "gain", &o.Gain, values.gain)
	setIfChanged(flags, "output", &o.Output, values.output)
	setIfChanged(flags, "server", &o.ServerAddress, values.serverAddress)

	return o
}

func setIfChanged[T any](flags *pflag.FlagSet, name string, dst **T, v T) {
	if flags.Changed(name) {
		*dst = &v
	}
}

func applyLogLevel(s string) error {
	level, ok := logger.ParseLogLevel(s)
	if !ok {
		return fmt.Errorf("unknown log level %q", s)
	}

	logger.SetLevel(level)

	return nil
}
