// Package player keeps the music panel's view in sync with the server.
//
// A [Controller] is fed from three directions: [Controller.Init] loads the current status and
// song, music events arrive through [Controller.HandleEvent], and user actions (transport, volume,
// seek) reply with a fresh status. Every status resets the position estimator:
//
//	stop   estimator stopped, position unknown, seeking disabled
//	pause  estimator stopped, position taken from the status
//	play   estimator restarted from the status
//
// Renderers read a [View] through [Controller.View] or the OnChange hook.
package player
