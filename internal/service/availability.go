package service

import "github.com/ticketflix/booking/internal/model"

// SeatsAvailable reports whether every requested seat of the show
// exists and is currently unbooked.  It is a pure function over the
// seat state passed in: to be authoritative it must be called on state
// fetched while holding the relevant seat locks; unlocked callers get
// an advisory answer only.  Both the producer pre-check and the
// consumer re-check use it.
func SeatsAvailable(show *model.Show, requested []string) bool {
    return len(UnavailableSeats(show, requested)) == 0
}

// UnavailableSeats returns the requested seats that are unknown to the
// show or already booked, preserving request order.
func UnavailableSeats(show *model.Show, requested []string) []string {
    var unavailable []string
    for _, number := range requested {
        seat := show.Seat(number)
        if seat == nil || seat.Booked {
            unavailable = append(unavailable, number)
        }
    }
    return unavailable
}
