package lock

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestSeatKey(t *testing.T) {
    assert.Equal(t, "seat-lock-42-A7", SeatKey(42, "A7"))
}

func TestMemoryLockerMutualExclusion(t *testing.T) {
    ctx := context.Background()
    m := NewMemoryLocker()

    l1, err := m.TryLock(ctx, "k", 10*time.Millisecond, time.Minute)
    require.NoError(t, err)

    _, err = m.TryLock(ctx, "k", 10*time.Millisecond, time.Minute)
    require.ErrorIs(t, err, ErrNotAcquired)

    require.NoError(t, m.Unlock(ctx, l1))

    l2, err := m.TryLock(ctx, "k", 10*time.Millisecond, time.Minute)
    require.NoError(t, err)
    assert.Greater(t, l2.Fence, l1.Fence, "fence must grow across acquisitions")
}

func TestMemoryLockerLeaseExpiry(t *testing.T) {
    ctx := context.Background()
    m := NewMemoryLocker()

    l1, err := m.TryLock(ctx, "k", 10*time.Millisecond, 10*time.Millisecond)
    require.NoError(t, err)

    // The second acquisition waits out the first lease.
    l2, err := m.TryLock(ctx, "k", 200*time.Millisecond, time.Minute)
    require.NoError(t, err)

    held, err := m.Held(ctx, l1)
    require.NoError(t, err)
    assert.False(t, held, "expired lease must not be considered held")

    // Releasing the lapsed lease must not free the new holder's lock.
    require.NoError(t, m.Unlock(ctx, l1))
    held, err = m.Held(ctx, l2)
    require.NoError(t, err)
    assert.True(t, held)
}

func TestMemoryLockerUnlockIdempotent(t *testing.T) {
    ctx := context.Background()
    m := NewMemoryLocker()
    l, err := m.TryLock(ctx, "k", 10*time.Millisecond, time.Minute)
    require.NoError(t, err)
    require.NoError(t, m.Unlock(ctx, l))
    require.NoError(t, m.Unlock(ctx, l))
    require.NoError(t, m.Unlock(ctx, nil))
}

// orderRecorder wraps a Locker and records the key order of
// acquisitions and releases.
type orderRecorder struct {
    Locker
    mu       sync.Mutex
    acquired []string
    released []string
}

func (r *orderRecorder) TryLock(ctx context.Context, key string, wait, lease time.Duration) (*Lease, error) {
    l, err := r.Locker.TryLock(ctx, key, wait, lease)
    if err == nil {
        r.mu.Lock()
        r.acquired = append(r.acquired, key)
        r.mu.Unlock()
    }
    return l, err
}

func (r *orderRecorder) Unlock(ctx context.Context, l *Lease) error {
    r.mu.Lock()
    r.released = append(r.released, l.Key)
    r.mu.Unlock()
    return r.Locker.Unlock(ctx, l)
}

func TestAcquireSeatsSortedOrder(t *testing.T) {
    ctx := context.Background()
    rec := &orderRecorder{Locker: NewMemoryLocker()}

    set, err := AcquireSeats(ctx, rec, 1, []string{"B2", "A1", "A10"}, 10*time.Millisecond, time.Minute)
    require.NoError(t, err)
    assert.Equal(t, []string{
        SeatKey(1, "A1"), SeatKey(1, "A10"), SeatKey(1, "B2"),
    }, rec.acquired, "seats must be locked in lexicographic order")

    set.Release(ctx)
    assert.Equal(t, []string{
        SeatKey(1, "B2"), SeatKey(1, "A10"), SeatKey(1, "A1"),
    }, rec.released, "release walks leases in reverse")
}

func TestAcquireSeatsRollsBackOnContention(t *testing.T) {
    ctx := context.Background()
    m := NewMemoryLocker()

    // Somebody else holds B2.
    blocker, err := m.TryLock(ctx, SeatKey(1, "B2"), 10*time.Millisecond, time.Minute)
    require.NoError(t, err)

    _, err = AcquireSeats(ctx, m, 1, []string{"A1", "B2"}, 20*time.Millisecond, time.Minute)
    require.ErrorIs(t, err, ErrNotAcquired)
    assert.Contains(t, err.Error(), "B2", "error must identify the contended seat")

    // A1 must have been released during rollback.
    l, err := m.TryLock(ctx, SeatKey(1, "A1"), 10*time.Millisecond, time.Minute)
    require.NoError(t, err)
    _ = m.Unlock(ctx, l)
    _ = m.Unlock(ctx, blocker)
}

func TestStillHeldDetectsLapsedLease(t *testing.T) {
    ctx := context.Background()
    m := NewMemoryLocker()

    set, err := AcquireSeats(ctx, m, 1, []string{"A1", "A2"}, 10*time.Millisecond, 15*time.Millisecond)
    require.NoError(t, err)

    held, err := set.StillHeld(ctx)
    require.NoError(t, err)
    assert.True(t, held)

    time.Sleep(30 * time.Millisecond)
    held, err = set.StillHeld(ctx)
    require.NoError(t, err)
    assert.False(t, held, "lapsed leases must be reported")
}
