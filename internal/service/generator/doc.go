// Package generator implements the alarm-tone run: resolve the parameters,
// render the burst, write it as a WAV file and optionally deliver it.
package generator
