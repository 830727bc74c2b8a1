// Package prompt collects an alarm profile interactively.
//
// Every question shows its default and, where the standard defines one, its
// range. Empty or unparsable answers keep the default. Advisories are logged
// as soon as a value is accepted; they never reject a value.
package prompt
