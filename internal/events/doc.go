// Package events interprets payloads decoded by the event channel.
//
// [Parse] turns a decoded payload into a [models.Event]; [Dispatcher] is a channel observer that
// routes parsed events to handlers registered per event class.
package events
