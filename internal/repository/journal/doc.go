// Package journal implements the alarm audit journal.
//
// The Recorder subscribes to the bus and appends every event it sees to a
// Journal: a JSON-lines file or a SQLite database. The journal is
// write-only from the controller's point of view; nothing is ever restored
// from it, so alarm counters still start from zero after a restart.
package journal
