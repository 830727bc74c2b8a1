// Package config loads and saves alarm profile snapshots in YAML format.
//
// A snapshot holds every parameter of one alarm sound plus the optional
// delivery settings. Defaults returns the reference values of a priority,
// Resolve layers command line overrides on top of a snapshot and Domain turns
// the result into an alarm.Profile ready for synthesis.
//
// Receiver holds the settings of the alarm-tone-receiver process.
package config
