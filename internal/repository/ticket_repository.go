package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/ticketflix/booking/internal/model"
)

const ticketColumns = `ticket_id, show_id, user_id, booked_seats, total_amount,
    movie_title, theater_name, show_starts_at, cancelled_at, created_at`

// TicketRepo encapsulates read access to tickets.  Writes happen only
// through Store, inside the commit-stage transactions.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo constructs a TicketRepo given a DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// GetByID fetches one ticket.  Returns ErrTicketNotFound when the id
// does not exist.
func (r *TicketRepo) GetByID(ctx context.Context, ticketID string) (*model.Ticket, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id = ? LIMIT 1`, ticketID)
    t, err := scanTicket(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTicketNotFound
    }
    return t, err
}

// ListByUser returns the user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Ticket, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE user_id = ? ORDER BY created_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var tickets []*model.Ticket
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        tickets = append(tickets, t)
    }
    return tickets, rows.Err()
}

// ListByShow returns every ticket booked for a show, newest first.
func (r *TicketRepo) ListByShow(ctx context.Context, showID uint64) ([]*model.Ticket, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE show_id = ? ORDER BY created_at DESC`, showID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var tickets []*model.Ticket
    for rows.Next() {
        t, err := scanTicket(rows)
        if err != nil {
            return nil, err
        }
        tickets = append(tickets, t)
    }
    return tickets, rows.Err()
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
    var t model.Ticket
    var cancelledAt sql.NullTime
    err := row.Scan(&t.TicketID, &t.ShowID, &t.UserID, &t.BookedSeats, &t.TotalAmount,
        &t.MovieTitle, &t.TheaterName, &t.ShowStartsAt, &cancelledAt, &t.CreatedAt)
    if err != nil {
        return nil, err
    }
    if cancelledAt.Valid {
        ts := cancelledAt.Time
        t.CancelledAt = &ts
    }
    return &t, nil
}
