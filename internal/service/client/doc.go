// Package client implements the alarm-panel commands: it resolves alarm
// names, connects to a running controller and renders its status.
package client
