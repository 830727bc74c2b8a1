package config

import "github.com/oshokin/alarm-tone/internal/domain/alarm"

// Defaults returns the reference parameter set of the priority.
// Unknown priorities get the high priority defaults with the given priority kept,
// so that Validate reports them.
func Defaults(p alarm.Priority) *Profile {
	if p == alarm.PriorityLow {
		return lowPriorityDefaults()
	}

	profile := highPriorityDefaults()
	profile.Priority = p

	return profile
}

func highPriorityDefaults() *Profile {
	fall := 15.0

	return &Profile{
		Priority:        alarm.PriorityHigh,
		SampleRate:      44100,
		PulseSpacingMs:  95,
		PulseDurationMs: 150,
		RiseTimePct:     15,
		FallTimePct:     &fall,
		First: Tone{
			BaseFrequency: 400,
			Harmonics:     "1 3 5 7 9",
			Volumes:       "1.0 0.85 0.6 0.5 0.4",
		},
		Second: Tone{
			BaseFrequency: 400,
			Harmonics:     "1 3 5 7 9",
			Volumes:       "1.0 0.85 0.6 0.5 0.4",
		},
		HalfBurstSpacingMs: 1000,
		BurstSpacingMs:     2459.53,
		Gain:               0.98,
		Output:             "new-hp.wav",
	}
}

func lowPriorityDefaults() *Profile {
	fall := 10.0

	return &Profile{
		Priority:        alarm.PriorityLow,
		SampleRate:      44100,
		PulseSpacingMs:  180,
		PulseDurationMs: 180,
		RiseTimePct:     20,
		FallTimePct:     &fall,
		First: Tone{
			BaseFrequency: 505,
			Harmonics:     "1 3 5 7 9",
			Volumes:       "0.75 0.7 0.5 0.3 0.3",
		},
		Second: Tone{
			BaseFrequency: 400,
			Harmonics:     "1 3 5 7 9",
			Volumes:       "0.75 0.7 0.5 0.3 0.3",
		},
		BurstSpacingMs: 25000,
		Gain:           0.98,
		Output:         "new-lp.wav",
	}
}
