// Package channel implements the live event channel: a persistent websocket connection to the control server
// whose frames are decoded and fanned out to registered observers.
//
// # Lifecycle
//
// A [Channel] is an owned instance with an explicit lifecycle: [Channel.Connect] starts it and
// [Channel.Dispose] ends it. Its [State] moves CLOSED → CONNECTING → OPEN → CLOSED → ...
//
// # Delivery
//
// Observers registered with [Channel.RegisterObserver] receive every decoded frame, synchronously, in
// registration order and in wire order. Text frames are parsed as JSON; binary frames are passed through
// unchanged. A frame that fails to decode is logged and dropped. An observer that panics is logged and
// the remaining observers still receive the frame.
//
// # Reconnect
//
// Every disconnect, including a failed dial, schedules exactly one reconnect through the [ReconnectPolicy]:
// a normal closure (code 1000) retries after the short delay, anything else after the long one. A pending
// reconnect is cancelled before another is scheduled and when a connection opens, so at most one is ever
// pending. Reconnection continues indefinitely until Dispose.
package channel
