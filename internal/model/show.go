package model

import "time"

// Show represents a scheduled screening of a movie on a particular
// screen.  It snapshots the movie title and theater name so that
// tickets keep meaningful labels even if the catalog changes later.
// A show owns an ordered collection of show_seats created once, at
// show-creation time, one per physical seat of the assigned screen.
// The seat set is immutable after creation.
//
// Fields:
//  ID          – primary key identifier.
//  ScreenID    – screen where the show is taking place.
//  MovieTitle  – title of the movie being screened.
//  TheaterName – name of the theater, snapshotted at creation.
//  StartsAt    – when the show begins.
//  Seats       – the per-show seat inventory (may be nil when the
//                show was loaded without its seats).
//  CreatedAt   – creation timestamp.
type Show struct {
    ID          uint64     // shows.id
    ScreenID    uint64     // shows.screen_id
    MovieTitle  string     // shows.movie_title
    TheaterName string     // shows.theater_name
    StartsAt    time.Time  // shows.starts_at
    Seats       []ShowSeat // show_seats rows belonging to this show
    CreatedAt   time.Time  // shows.created_at
}

// Seat returns the seat with the given seat number, or nil when the
// show has no such seat.  Seat numbers are unique within a show.
func (s *Show) Seat(number string) *ShowSeat {
    for i := range s.Seats {
        if s.Seats[i].SeatNumber == number {
            return &s.Seats[i]
        }
    }
    return nil
}

// AvailableCount reports how many seats of the show are currently
// unbooked.  It is a convenience for seat-map views and tests.
func (s *Show) AvailableCount() int {
    n := 0
    for i := range s.Seats {
        if !s.Seats[i].Booked {
            n++
        }
    }
    return n
}
