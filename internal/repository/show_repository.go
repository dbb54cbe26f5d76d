package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/ticketflix/booking/internal/model"
)

// ShowRepo encapsulates database operations for shows and their seat
// inventory.
type ShowRepo struct {
    db *sql.DB
}

// NewShowRepo constructs a ShowRepo given a DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// Create inserts the show together with its full seat inventory in one
// transaction.  Seats exist exactly from show creation onwards; the
// set is never extended or shrunk afterwards.
func (r *ShowRepo) Create(ctx context.Context, show *model.Show) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `INSERT INTO shows (screen_id, movie_title, theater_name, starts_at) VALUES (?, ?, ?, ?)`,
        show.ScreenID, show.MovieTitle, show.TheaterName, show.StartsAt.UTC(),
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    show.ID = uint64(id)

    if len(show.Seats) > 0 {
        // Build one INSERT with placeholders for every seat row.
        query := `INSERT INTO show_seats (show_id, seat_number, seat_class, price, booked) VALUES `
        args := make([]interface{}, 0, len(show.Seats)*5)
        for i := range show.Seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, 0)"
            show.Seats[i].ShowID = show.ID
            args = append(args, show.ID, show.Seats[i].SeatNumber, show.Seats[i].SeatClass, show.Seats[i].Price)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetWithSeats loads a show and its seat inventory ordered by seat
// number.  Returns ErrShowNotFound when the id does not exist.
func (r *ShowRepo) GetWithSeats(ctx context.Context, showID uint64) (*model.Show, error) {
    var s model.Show
    err := r.db.QueryRowContext(ctx,
        `SELECT id, screen_id, movie_title, theater_name, starts_at, created_at FROM shows WHERE id = ? LIMIT 1`,
        showID,
    ).Scan(&s.ID, &s.ScreenID, &s.MovieTitle, &s.TheaterName, &s.StartsAt, &s.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrShowNotFound
    }
    if err != nil {
        return nil, err
    }

    rows, err := r.db.QueryContext(ctx,
        `SELECT id, show_id, seat_number, seat_class, price, booked, booked_at, created_at
           FROM show_seats WHERE show_id = ? ORDER BY seat_number`,
        showID,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    for rows.Next() {
        var seat model.ShowSeat
        var bookedAt sql.NullTime
        if err := rows.Scan(&seat.ID, &seat.ShowID, &seat.SeatNumber, &seat.SeatClass,
            &seat.Price, &seat.Booked, &bookedAt, &seat.CreatedAt); err != nil {
            return nil, err
        }
        if bookedAt.Valid {
            t := bookedAt.Time
            seat.BookedAt = &t
        }
        s.Seats = append(s.Seats, seat)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return &s, nil
}

// seatPlaceholders returns "?,?,..." for n seats.  MySQL has no array
// binding, so IN clauses are expanded by hand.
func seatPlaceholders(n int) string {
    return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
