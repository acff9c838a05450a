// Package media describes media handlers: the icon and context menu the panel shows for a resource
// and the actions behind each menu entry.
//
// A [Registry] maps handler names to [Handler] values and resolves a resource URL to the handler
// that accepts it. [NewYouTubeHandler] is the built-in handler for YouTube links.
package media
