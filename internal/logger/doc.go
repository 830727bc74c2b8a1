// Package logger wraps zap for the alarm-tone binaries.
//
// It keeps a global sugared logger writing console output to stderr, stores
// scoped loggers in a context (ToContext, FromContext, WithName, WithKV) and
// offers level parsing plus leveled helpers such as InfoKV and WarnKV that
// take the context first.
package logger
