// Package repository defines the data access layer and the sentinel
// error values shared across repositories.  Handlers compare against
// these with errors.Is and translate them into HTTP responses: 404 for
// ErrNotFound, 409 for the conflict family, and so on.  Keeping them
// here avoids each repository inventing its own variants of the same
// failure.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a registration collides with the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidTransition is returned when a conditional status update
// finds the order in a state from which the requested transition is not
// legal, including the case where a concurrent writer won the race.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrAlreadyProcessed is returned when a checkout is attempted for an
// order that already has a checkout session or has left the pending
// state.
var ErrAlreadyProcessed = errors.New("order already processed")

// ErrIntentMismatch is returned when a payment confirmation references a
// payment intent other than the one stored for the order.
var ErrIntentMismatch = errors.New("payment intent mismatch")
