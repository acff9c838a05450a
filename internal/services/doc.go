// Package services talks to the control server's HTTP API.
//
// # API Service
//
// [APIService] posts request envelopes to /execute:
//
//	{"id": "...", "type": "request", "target": "localhost", "action": "music.mpd.status", "args": {...}}
//
// and decodes the response envelope. Raw [APIService.Get] and [APIService.Post] are kept for the
// api command. Calls can be throttled with [WithRateLimit] so that dragging the volume or seek
// controls does not flood the server.
//
// # Music Service
//
// [MusicService] wraps the music.mpd plugin actions on top of any [Backend]. Status values arrive
// as strings ("64", "42:213") and are decoded leniently by the models package.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrBackendResponse] : the server executed the request and reported errors
//   - [shared.ErrDecode] : the response or its output did not decode
//   - [shared.ErrInvalidArgument] : the call was rejected before reaching the server
package services
