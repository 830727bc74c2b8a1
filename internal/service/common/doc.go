// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC delivery client with timeouts and a helper
// that detects the current system actor (hostname/username) recorded with
// every delivered file.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
