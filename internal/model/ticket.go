package model

import (
    "strings"
    "time"
)

// SeatSeparator joins seat numbers into the tickets.booked_seats
// column and splits them back out during cancellation.
const SeatSeparator = ","

// Ticket records a confirmed booking.  It is created only by the
// commit stage after seats have been durably marked as booked, and it
// is never mutated afterwards except for cancellation bookkeeping:
// cancelling keeps the row for audit and only stamps CancelledAt.
//
// Fields:
//  TicketID    – generated unique identifier (UUID).
//  ShowID      – show the ticket belongs to.
//  UserID      – user who booked.
//  BookedSeats – comma-joined seat numbers, in the order requested.
//  TotalAmount – sum of the per-seat prices captured at booking time.
//  MovieTitle  – movie title snapshot taken from the show.
//  TheaterName – theater name snapshot taken from the show.
//  ShowStartsAt – show start time snapshot.
//  CancelledAt – when the ticket was cancelled (nil while active).
//  CreatedAt   – when the commit stage persisted the ticket.
type Ticket struct {
    TicketID     string     // tickets.ticket_id
    ShowID       uint64     // tickets.show_id
    UserID       uint64     // tickets.user_id
    BookedSeats  string     // tickets.booked_seats
    TotalAmount  uint32     // tickets.total_amount
    MovieTitle   string     // tickets.movie_title
    TheaterName  string     // tickets.theater_name
    ShowStartsAt time.Time  // tickets.show_starts_at
    CancelledAt  *time.Time // tickets.cancelled_at (nullable)
    CreatedAt    time.Time  // tickets.created_at
}

// SeatNumbers splits the serialized booked_seats column back into a
// seat list.  It returns nil for an empty column.
func (t *Ticket) SeatNumbers() []string {
    if t.BookedSeats == "" {
        return nil
    }
    return strings.Split(t.BookedSeats, SeatSeparator)
}

// Active reports whether the ticket still holds its seats.
func (t *Ticket) Active() bool { return t.CancelledAt == nil }
