// Package common holds helpers shared by the panel commands.
//
// It provides the panel gRPC client with per-call timeouts and a helper to
// detect the caller identity (user@host) recorded with every panel command.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
