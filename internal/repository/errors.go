// Package repository implements durable storage for shows, seats,
// tickets and users over MySQL.  Sentinel errors defined here let the
// service layer distinguish failure scenarios with errors.Is without
// depending on database/sql details.
package repository

import "errors"

// ErrShowNotFound is returned when a show id does not exist.
var ErrShowNotFound = errors.New("show not found")

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrTicketNotFound is returned when a ticket id does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrSeatsTaken is returned by the booking commit when at least one of
// the requested seats was already booked at write time.  Under correct
// locking this only fires on redelivery of an already-committed
// request, but the store enforces it unconditionally as a last line of
// defense.
var ErrSeatsTaken = errors.New("one or more seats already booked")

// ErrTicketCancelled is returned when a cancellation targets a ticket
// whose seats were already released, e.g. on message redelivery.
var ErrTicketCancelled = errors.New("ticket already cancelled")
