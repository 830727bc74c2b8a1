// Package validation holds the advisory IEC 60601-1-8 checks.
//
// Predicates report whether harmonics and volumes satisfy the standard's band
// and level requirements; CheckProfile runs every range check for a priority
// and returns the findings as alarm.Diagnostic values. Nothing here blocks
// synthesis.
package validation
