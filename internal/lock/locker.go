// Package lock provides the distributed mutual-exclusion primitive used
// to serialize access to individual show seats.  A lock is identified by
// a string key and held under a lease: if the holder crashes, the lock
// service reclaims the key once the lease lapses so other workers can
// make progress.  Critical sections must therefore stay well inside the
// lease window; every lease also carries a fencing token so downstream
// writers can detect a lapsed holder.
package lock

import (
    "context"
    "errors"
    "fmt"
    "time"
)

// ErrNotAcquired is returned by TryLock when the key could not be
// obtained within the wait window.  Callers must treat it as "resource
// temporarily contended", not as a permanent failure.
var ErrNotAcquired = errors.New("lock not acquired")

// Lease is a held lock.  It is returned by a successful TryLock and
// must be passed back to Unlock.  Token identifies this particular
// acquisition so that release and expiry checks cannot affect a lock
// that has since been re-acquired by somebody else.  Fence is a
// monotonically increasing number per key: a later acquisition always
// observes a larger fence than an earlier one.
type Lease struct {
    Key     string
    Token   string
    Fence   int64
    Expires time.Time
}

// Locker is the narrow contract the booking coordinators depend on.
// Implementations must make Unlock idempotent: releasing a lease that
// already expired, or that was never acquired, is not an error.
type Locker interface {
    // TryLock attempts to obtain key, blocking up to wait.  On success
    // the lock is held for at most lease before the service reclaims
    // it.  Returns ErrNotAcquired when the wait window elapses.
    TryLock(ctx context.Context, key string, wait, lease time.Duration) (*Lease, error)

    // Unlock releases a held lease.  It must tolerate "not held by
    // caller" without raising.
    Unlock(ctx context.Context, l *Lease) error

    // Held reports whether the lease is still in force, i.e. the key
    // still belongs to this acquisition.  Commit stages call this
    // before mutating durable state to guard against lapsed leases.
    Held(ctx context.Context, l *Lease) (bool, error)
}

// SeatKey builds the canonical lock key for one seat of one show.
// Both booking and cancellation must use the same composition so they
// contend on the same keys.
func SeatKey(showID uint64, seatNumber string) string {
    return fmt.Sprintf("seat-lock-%d-%s", showID, seatNumber)
}
