package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrBackendResponse    = fmt.Errorf("backend returned errors")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrHandlerNotFound    = fmt.Errorf("media handler not found")

	// Payload errors
	ErrDecode       = fmt.Errorf("failed to decode payload")
	ErrNotAnEvent   = fmt.Errorf("payload is not an event")
	ErrInvalidEvent = fmt.Errorf("invalid event record")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
