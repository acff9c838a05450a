// Package models defines the wire and domain types exchanged between the control server and the panel.
//
// The package contains three categories of types:
//
// 1. Message envelopes: the JSON shapes used on the wire
//   - [Event] : a notification pushed on the event stream, with its [EventArgs]
//   - [Request] : an action call sent to the /execute endpoint
//   - [Response] : the reply envelope carrying output and errors
//
// 2. Music player DTOs: decoded from response outputs and event arguments
//   - [MusicStatus] : player state, volume, flags, and the "elapsed:length" time field
//   - [Track] : song metadata and queue position
//   - [BrowserItem] : a directory, playlist, or file entry from the library browser
//
// 3. Persistent entities
//   - [EventRecord] : a journaled event, implementing [Model]
//
// MPD reports most numeric fields as strings, so numeric fields use [FlexInt], which accepts both.
package models
