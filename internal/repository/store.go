package repository

import (
    "context"
    "database/sql"

    "github.com/ticketflix/booking/internal/model"
)

// Store bundles the repositories behind the narrow interface the
// booking service depends on, and owns the two transactional writes of
// the commit stage.  The transaction guards against a process crash
// between "locks held" and "data committed"; the seat lock, not the
// transaction, is what keeps two processes out of the critical section
// at the same time.
type Store struct {
    db      *sql.DB
    Shows   *ShowRepo
    Tickets *TicketRepo
    Users   *UserRepo
}

// NewStore constructs a Store and its repositories over one DB handle.
func NewStore(db *sql.DB) *Store {
    return &Store{
        db:      db,
        Shows:   NewShowRepo(db),
        Tickets: NewTicketRepo(db),
        Users:   NewUserRepo(db),
    }
}

// ShowWithSeats loads a show and its full seat inventory.
func (s *Store) ShowWithSeats(ctx context.Context, showID uint64) (*model.Show, error) {
    return s.Shows.GetWithSeats(ctx, showID)
}

// UserByID resolves a user.
func (s *Store) UserByID(ctx context.Context, userID uint64) (*model.User, error) {
    return s.Users.GetByID(ctx, userID)
}

// TicketByID resolves a ticket.
func (s *Store) TicketByID(ctx context.Context, ticketID string) (*model.Ticket, error) {
    return s.Tickets.GetByID(ctx, ticketID)
}

// CreateTicket durably books the seats and persists the ticket in one
// transaction.  The seat update only touches rows that are still
// unbooked; if fewer rows change than seats were requested, somebody
// else holds at least one of them and the whole write rolls back with
// ErrSeatsTaken.  That makes the write safe even against a lapsed
// lock lease.
func (s *Store) CreateTicket(ctx context.Context, t *model.Ticket, seats []string) error {
    if len(seats) == 0 {
        return ErrSeatsTaken
    }
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    args := make([]interface{}, 0, len(seats)+1)
    args = append(args, t.ShowID)
    for _, seat := range seats {
        args = append(args, seat)
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE show_seats SET booked = 1, booked_at = UTC_TIMESTAMP()
          WHERE show_id = ? AND seat_number IN (`+seatPlaceholders(len(seats))+`) AND booked = 0`,
        args...,
    )
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected != int64(len(seats)) {
        return ErrSeatsTaken
    }

    if _, err := tx.ExecContext(ctx,
        `INSERT INTO tickets (ticket_id, show_id, user_id, booked_seats, total_amount,
             movie_title, theater_name, show_starts_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        t.TicketID, t.ShowID, t.UserID, t.BookedSeats, t.TotalAmount,
        t.MovieTitle, t.TheaterName, t.ShowStartsAt.UTC(),
    ); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// CancelTicket re-opens the ticket's seats and stamps the ticket as
// cancelled, in one transaction.  The ticket row is retained for
// audit.  Stamping the ticket first, guarded by cancelled_at IS NULL,
// makes the write idempotent: a redelivered cancellation finds the row
// already stamped, rolls back and reports ErrTicketCancelled without
// touching seats that may have been legitimately re-booked since.
func (s *Store) CancelTicket(ctx context.Context, t *model.Ticket, seats []string) error {
    tx, err := s.db.BeginTx(ctx, nil)
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
        `UPDATE tickets SET cancelled_at = UTC_TIMESTAMP() WHERE ticket_id = ? AND cancelled_at IS NULL`,
        t.TicketID,
    )
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrTicketCancelled
    }

    if len(seats) > 0 {
        args := make([]interface{}, 0, len(seats)+1)
        args = append(args, t.ShowID)
        for _, seat := range seats {
            args = append(args, seat)
        }
        if _, err := tx.ExecContext(ctx,
            `UPDATE show_seats SET booked = 0, booked_at = NULL
              WHERE show_id = ? AND seat_number IN (`+seatPlaceholders(len(seats))+`)`,
            args...,
        ); err != nil {
            return err
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
