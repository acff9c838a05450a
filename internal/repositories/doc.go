// Package repositories implements the SQLite event journal.
//
// [EventRepository] stores decoded events with an atomically assigned sequence number, so history
// can be listed newest first even when several events share a timestamp. [Journal] adapts the
// repository to an event handler that can be registered on an events.Dispatcher.
package repositories
