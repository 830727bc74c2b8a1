package validation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/oshokin/alarm-tone/internal/domain/alarm"
)

// ParseVolumes converts volume tokens into values in (0, 1].
// Tokens that are not numbers become 0, non-positive values are replaced by
// their magnitude and values above 1 are capped. Each correction is reported.
func ParseVolumes(tokens []string) ([]float64, []alarm.Diagnostic) {
	var (
		volumes     = make([]float64, 0, len(tokens))
		diagnostics []alarm.Diagnostic
	)

	for i, token := range tokens {
		field := fmt.Sprintf("volumes[%d]", i)

		v, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			diagnostics = append(diagnostics, alarm.Diagnostic{
				Code:    alarm.CodeVolumeNotANumber,
				Field:   field,
				Message: fmt.Sprintf("%q is not a number, using 0", token),
			})

			volumes = append(volumes, 0)

			continue
		}

		switch {
		case v <= 0:
			diagnostics = append(diagnostics, alarm.Diagnostic{
				Code:    alarm.CodeVolumeNotPositive,
				Field:   field,
				Message: fmt.Sprintf("volume %g must be greater than 0, using its absolute value", v),
				Value:   v,
			})

			v = math.Abs(v)
		case v > 1:
			diagnostics = append(diagnostics, alarm.Diagnostic{
				Code:    alarm.CodeVolumeAboveOne,
				Field:   field,
				Message: fmt.Sprintf("volume %g must be at most 1, using 1", v),
				Value:   v,
			})

			v = 1
		}

		volumes = append(volumes, v)
	}

	return volumes, diagnostics
}

// CheckVolumeCount reports a mismatch between the harmonic and volume counts.
func CheckVolumeCount(field string, harmonics, volumes int) []alarm.Diagnostic {
	if harmonics == volumes {
		return nil
	}

	return []alarm.Diagnostic{{
		Code:    alarm.CodeVolumeCountMismatch,
		Field:   field,
		Message: fmt.Sprintf("%d harmonics but %d volumes", harmonics, volumes),
		Value:   float64(volumes),
	}}
}
