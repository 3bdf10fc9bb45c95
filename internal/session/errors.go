package session

// This file defines the sentinel errors shared across the package.
// They let handlers distinguish failure scenarios and map each one to
// an HTTP status without string matching.

import "errors"

// ErrSeatUnavailable is returned by Toggle when the requested seat is not
// available in the last-known snapshot, or is absent from it entirely.
// Recoverable: the user picks another seat.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrEmptySelection is returned by Checkout when no seats are selected.
// The draft never reaches the network in this case.
var ErrEmptySelection = errors.New("empty selection")

// ErrAlreadyInFlight is returned by Submit when a submission for this
// session is already running.  Duplicate submits are ignored, never
// queued.
var ErrAlreadyInFlight = errors.New("submission already in flight")

// ErrNoDraft is returned by Submit when Checkout has not been called or
// the previous draft reached a terminal state that requires a fresh
// checkout.
var ErrNoDraft = errors.New("no open draft")

// ErrDraftTerminal is returned by Submit when the current draft resolved
// with a reason that forbids resubmission under the same key.
var ErrDraftTerminal = errors.New("draft already resolved")

// ErrSessionNotFound is returned by the hub when no session exists for
// the given identifier.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotOwner is returned by the hub when a caller asks for a session
// that belongs to a different user.
var ErrNotOwner = errors.New("session owned by another user")
