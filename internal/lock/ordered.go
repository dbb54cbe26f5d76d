package lock

import (
    "context"
    "fmt"
    "log"
    "sort"
    "time"
)

// SeatSet is the set of leases held over one booking or cancellation
// critical section.  It remembers acquisition order so release can walk
// the leases in reverse.
type SeatSet struct {
    locker Locker
    leases []*Lease
}

// AcquireSeats locks every requested seat of a show, always in
// lexicographic seat order.  Acquiring in one global deterministic
// order across all callers prevents circular wait: two requests for
// {A,B} and {B,A} both attempt A first, so no two conflicting callers
// can each hold a strict subset and block on the other's seat.
//
// On any failed acquisition the seats locked so far are released and
// the contended seat is reported via ErrNotAcquired wrapping.  The
// caller never proceeds partially locked.
func AcquireSeats(ctx context.Context, locker Locker, showID uint64, seats []string, wait, lease time.Duration) (*SeatSet, error) {
    ordered := make([]string, len(seats))
    copy(ordered, seats)
    sort.Strings(ordered)

    set := &SeatSet{locker: locker, leases: make([]*Lease, 0, len(ordered))}
    for _, seat := range ordered {
        l, err := locker.TryLock(ctx, SeatKey(showID, seat), wait, lease)
        if err != nil {
            set.Release(ctx)
            return nil, fmt.Errorf("seat %s: %w", seat, err)
        }
        set.leases = append(set.leases, l)
    }
    return set, nil
}

// Release unlocks every held lease in reverse acquisition order.  It
// never fails: unlock errors (including "already expired") are logged
// and swallowed so that release is safe on every exit path.
func (s *SeatSet) Release(ctx context.Context) {
    for i := len(s.leases) - 1; i >= 0; i-- {
        if err := s.locker.Unlock(ctx, s.leases[i]); err != nil {
            log.Printf("seat-lock: release %s failed: %v", s.leases[i].Key, err)
        }
    }
    s.leases = s.leases[:0]
}

// StillHeld reports whether every lease of the set is still in force.
// The commit stage checks this immediately before the durable write so
// a lapsed lease cannot silently let two writers into the same seats.
// Each lease also carries a fencing token (monotonic per key); the
// MySQL store cannot consume fences, so the rows-affected guard in the
// commit transaction is the second line of defense after this check.
func (s *SeatSet) StillHeld(ctx context.Context) (bool, error) {
    for _, l := range s.leases {
        ok, err := s.locker.Held(ctx, l)
        if err != nil {
            return false, err
        }
        if !ok {
            return false, nil
        }
    }
    return true, nil
}
