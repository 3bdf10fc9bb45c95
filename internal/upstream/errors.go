// Package upstream contains the HTTP clients for the external backends
// this service consumes: the movie/showtime API, the seat inventory API
// and the booking API.  Auth token issuance and refresh-on-401 are those
// backends' business, not modelled here; the clients only forward the
// caller's bearer token when one is configured.
package upstream

import "fmt"

// NotFoundError reports that an upstream resource does not exist.  For
// the booking flow this is fatal: the user must navigate to a different
// showtime.  It satisfies the NotFound() probe the session poller uses
// to stop refreshing a dead showtime.
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NotFound marks the error as definitive rather than transient.
func (e *NotFoundError) NotFound() bool { return true }

// StatusError reports an unexpected HTTP status from an upstream call.
type StatusError struct {
	Endpoint string
	Code     int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Code)
}
