// Package alarm contains core domain types for IEC 60601-1-8 alarm sounds.
//
// It defines the pulse timing and tone descriptions that make up a Profile,
// the per-priority Limits tables used for advisory range checks, the
// Diagnostic value those checks produce, and the Actor/Delivery records used
// when a rendered sound is transferred to a receiver.
package alarm
