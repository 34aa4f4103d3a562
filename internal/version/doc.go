// Package version holds build metadata shared by alarm-controller and
// alarm-panel. Version, Commit and BuildTime are set with -ldflags.
package version
