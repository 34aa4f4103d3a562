// Package config defines the alarm controller settings and helpers to load,
// validate and save them in YAML format.
//
// Settings that shape the alarm catalog (mute limits, simulated keys) are
// read once at start-up. The Watcher re-reads the file on change so that the
// log level can be adjusted on a running controller.
package config
