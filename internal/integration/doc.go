// Package integration holds end-to-end tests that run the alarm controller
// and talk to it over the panel gRPC service.
package integration
