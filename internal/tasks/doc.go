// Package tasks runs the panel's multi-call music operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [PanelEngine.Load] : Everything the panel shows on startup
//     - Player status and current song
//     - Play queue
//     - Root library listing, grouped and sorted
//     - Failing calls are collected in [PanelData.Errors] instead of aborting
//
//  2. [PanelEngine.BulkExport] : Stored playlists to files
//     - Fetches each playlist under a rate limit
//     - Writes files with a bounded worker pool
//     - Summarizes the run in export_manifest.json
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
