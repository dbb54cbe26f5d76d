package repository

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/ticketflix/booking/internal/model"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    return NewStore(db), mock
}

func sampleTicket() *model.Ticket {
    return &model.Ticket{
        TicketID:     "t-1",
        ShowID:       1,
        UserID:       7,
        BookedSeats:  "A1,A2",
        TotalAmount:  300,
        MovieTitle:   "Interstellar",
        TheaterName:  "Galaxy Cinemas",
        ShowStartsAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
    }
}

func TestCreateTicketBooksSeatsAndInsertsTicket(t *testing.T) {
    store, mock := newMockStore(t)
    ticket := sampleTicket()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE show_seats SET booked = 1").
        WithArgs(ticket.ShowID, "A1", "A2").
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec("INSERT INTO tickets").
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectCommit()

    require.NoError(t, store.CreateTicket(context.Background(), ticket, []string{"A1", "A2"}))
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketRollsBackWhenSeatsContended(t *testing.T) {
    store, mock := newMockStore(t)
    ticket := sampleTicket()

    // Only one of the two requested rows was still unbooked.
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE show_seats SET booked = 1").
        WithArgs(ticket.ShowID, "A1", "A2").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectRollback()

    err := store.CreateTicket(context.Background(), ticket, []string{"A1", "A2"})
    require.ErrorIs(t, err, ErrSeatsTaken)
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketRejectsEmptySeatList(t *testing.T) {
    store, _ := newMockStore(t)
    err := store.CreateTicket(context.Background(), sampleTicket(), nil)
    require.ErrorIs(t, err, ErrSeatsTaken)
}

func TestCancelTicketStampsAndFreesSeats(t *testing.T) {
    store, mock := newMockStore(t)
    ticket := sampleTicket()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE tickets SET cancelled_at").
        WithArgs(ticket.TicketID).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE show_seats SET booked = 0").
        WithArgs(ticket.ShowID, "A1", "A2").
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectCommit()

    require.NoError(t, store.CancelTicket(context.Background(), ticket, []string{"A1", "A2"}))
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelTicketAlreadyCancelled(t *testing.T) {
    store, mock := newMockStore(t)
    ticket := sampleTicket()

    // The stamp touches zero rows, so the seats are never updated.
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE tickets SET cancelled_at").
        WithArgs(ticket.TicketID).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    err := store.CancelTicket(context.Background(), ticket, []string{"A1", "A2"})
    require.ErrorIs(t, err, ErrTicketCancelled)
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithSeats(t *testing.T) {
    store, mock := newMockStore(t)
    now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
    starts := now.Add(48 * time.Hour)

    mock.ExpectQuery("SELECT id, screen_id, movie_title, theater_name, starts_at, created_at FROM shows").
        WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "screen_id", "movie_title", "theater_name", "starts_at", "created_at"}).
            AddRow(1, 2, "Interstellar", "Galaxy Cinemas", starts, now))
    mock.ExpectQuery("SELECT id, show_id, seat_number, seat_class, price, booked, booked_at, created_at").
        WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "show_id", "seat_number", "seat_class", "price", "booked", "booked_at", "created_at"}).
            AddRow(1, 1, "A1", model.SeatClassClassic, 100, false, nil, now).
            AddRow(2, 1, "A2", model.SeatClassPremium, 200, true, now, now))

    show, err := store.ShowWithSeats(context.Background(), 1)
    require.NoError(t, err)
    assert.Equal(t, "Interstellar", show.MovieTitle)
    require.Len(t, show.Seats, 2)
    assert.False(t, show.Seats[0].Booked)
    assert.Nil(t, show.Seats[0].BookedAt)
    assert.True(t, show.Seats[1].Booked)
    require.NotNil(t, show.Seats[1].BookedAt)
    assert.Equal(t, 1, show.AvailableCount())
    require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithSeatsNotFound(t *testing.T) {
    store, mock := newMockStore(t)
    mock.ExpectQuery("SELECT id, screen_id, movie_title, theater_name, starts_at, created_at FROM shows").
        WithArgs(uint64(404)).
        WillReturnError(sql.ErrNoRows)

    _, err := store.ShowWithSeats(context.Background(), 404)
    require.ErrorIs(t, err, ErrShowNotFound)
}

func TestTicketGetByIDNotFound(t *testing.T) {
    store, mock := newMockStore(t)
    mock.ExpectQuery("SELECT ticket_id, show_id, user_id, booked_seats, total_amount").
        WithArgs("nope").
        WillReturnError(sql.ErrNoRows)

    _, err := store.TicketByID(context.Background(), "nope")
    require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestShowCreateInsertsSeatInventory(t *testing.T) {
    store, mock := newMockStore(t)
    show := &model.Show{
        ScreenID:    2,
        MovieTitle:  "Interstellar",
        TheaterName: "Galaxy Cinemas",
        StartsAt:    time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
        Seats: []model.ShowSeat{
            {SeatNumber: "A1", SeatClass: model.SeatClassClassic, Price: 100},
            {SeatNumber: "A2", SeatClass: model.SeatClassPremium, Price: 200},
        },
    }

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO shows").
        WithArgs(show.ScreenID, show.MovieTitle, show.TheaterName, show.StartsAt).
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO show_seats").
        WillReturnResult(sqlmock.NewResult(1, 2))
    mock.ExpectCommit()

    require.NoError(t, store.Shows.Create(context.Background(), show))
    assert.Equal(t, uint64(42), show.ID)
    assert.Equal(t, uint64(42), show.Seats[0].ShowID)
    require.NoError(t, mock.ExpectationsWereMet())
}
