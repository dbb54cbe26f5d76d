package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/ticketflix/booking/internal/model"
)

// UserRepo provides read access to the users table.  Account creation
// and credentials live in a separate service; the booking core only
// resolves identities.
type UserRepo struct {
    db *sql.DB
}

// NewUserRepo constructs a UserRepo given a DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetByID fetches a user by id.  Returns ErrUserNotFound when the id
// does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    var u model.User
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, email, role, is_active, created_at FROM users WHERE id = ? LIMIT 1`,
        id,
    ).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrUserNotFound
    }
    if err != nil {
        return nil, err
    }
    return &u, nil
}
