package service

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/ticketflix/booking/internal/model"
)

func seatMapShow() *model.Show {
    return &model.Show{
        ID: 1,
        Seats: []model.ShowSeat{
            {SeatNumber: "A1", SeatClass: model.SeatClassClassic, Price: 100},
            {SeatNumber: "A2", SeatClass: model.SeatClassPremium, Price: 200, Booked: true},
            {SeatNumber: "B1", SeatClass: model.SeatClassClassic, Price: 100},
        },
    }
}

func TestSeatsAvailable(t *testing.T) {
    show := seatMapShow()

    assert.True(t, SeatsAvailable(show, []string{"A1", "B1"}))
    assert.False(t, SeatsAvailable(show, []string{"A1", "A2"}), "booked seat")
    assert.False(t, SeatsAvailable(show, []string{"Z9"}), "unknown seat")
    assert.True(t, SeatsAvailable(show, nil), "empty request is vacuously available")
}

func TestUnavailableSeatsPreservesRequestOrder(t *testing.T) {
    show := seatMapShow()

    got := UnavailableSeats(show, []string{"Z9", "A1", "A2"})
    assert.Equal(t, []string{"Z9", "A2"}, got)
}
