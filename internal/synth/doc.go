// Package synth renders IEC 60601-1-8 pulse bursts into float samples.
//
// The pipeline is Envelope → Harmonic (once per harmonic) → Merge (once per
// pulse) → Assemble, which sequences pulses and Silence runs per priority
// topology and scales the result to the requested gain. Every stage is a pure
// function of its inputs; range advisories are returned as values on Burst
// instead of being printed.
package synth
