// Package repository persists booking drafts and their outcomes.  The
// database is not the source of truth for live sessions (those are in
// memory); it exists so an idempotency key survives a process restart
// and an abandoned submission can still be retried without double
// booking.  Sentinel errors below let handlers map failures to HTTP
// statuses without string matching.
package repository

import "errors"

// ErrDraftNotFound is returned when no draft exists for the given id.
var ErrDraftNotFound = errors.New("draft not found")
