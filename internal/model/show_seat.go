package model

import "time"

// Seat classes supported by the seat inventory.  The class decides
// which price band a seat belongs to when a show is created.
const (
    SeatClassClassic = "CLASSIC"
    SeatClassPremium = "PREMIUM"
)

// ShowSeat links a physical seat to a particular show and tracks
// availability and pricing.  There is one show_seat record for every
// seat of the screen when a show is created.  The Booked/BookedAt
// pair is the only contended state in the system and must never be
// mutated without holding the seat's lock.
//
// Fields:
//  ID         – primary key identifier.
//  ShowID     – the show to which this seat belongs.
//  SeatNumber – seat label, unique within the show (e.g. "A7").
//  SeatClass  – CLASSIC or PREMIUM.
//  Price      – price in minor currency units for this seat.
//  Booked     – whether the seat is currently held by a ticket.
//  BookedAt   – when the seat was booked (nil while free).
//  CreatedAt  – timestamp when the record was created.
type ShowSeat struct {
    ID         uint64     // show_seats.id
    ShowID     uint64     // show_seats.show_id
    SeatNumber string     // show_seats.seat_number
    SeatClass  string     // show_seats.seat_class
    Price      uint32     // show_seats.price
    Booked     bool       // show_seats.booked
    BookedAt   *time.Time // show_seats.booked_at (nullable)
    CreatedAt  time.Time  // show_seats.created_at
}
