// Package receiver runs the alarm-tone-receiver: a gRPC endpoint that stores
// delivered sound files, plus optional HTTP endpoints for health checks,
// Prometheus metrics and browsing the stored files.
package receiver
