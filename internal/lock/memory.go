package lock

import (
    "context"
    "strconv"
    "sync"
    "time"
)

// MemoryLocker is an in-process Locker with the same lease semantics as
// the Redis implementation.  It exists so the booking concurrency logic
// can be exercised deterministically in tests, and as a fallback for
// single-node deployments where no lock service is configured.
type MemoryLocker struct {
    mu    sync.Mutex
    held  map[string]memEntry
    fence map[string]int64
    seq   int64
}

type memEntry struct {
    token   string
    expires time.Time
}

// NewMemoryLocker returns an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
    return &MemoryLocker{
        held:  make(map[string]memEntry),
        fence: make(map[string]int64),
    }
}

// TryLock obtains key with a lease, retrying until wait elapses.
// Expired entries are reclaimed lazily on the next acquisition attempt.
func (m *MemoryLocker) TryLock(ctx context.Context, key string, wait, lease time.Duration) (*Lease, error) {
    deadline := time.Now().Add(wait)
    for {
        if l, ok := m.tryOnce(key, lease); ok {
            return l, nil
        }
        if time.Now().After(deadline) {
            return nil, ErrNotAcquired
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(time.Millisecond):
        }
    }
}

func (m *MemoryLocker) tryOnce(key string, lease time.Duration) (*Lease, bool) {
    m.mu.Lock()
    defer m.mu.Unlock()
    now := time.Now()
    if e, ok := m.held[key]; ok && now.Before(e.expires) {
        return nil, false
    }
    m.seq++
    m.fence[key]++
    token := strconv.FormatInt(m.seq, 10)
    m.held[key] = memEntry{token: token, expires: now.Add(lease)}
    return &Lease{
        Key:     key,
        Token:   token,
        Fence:   m.fence[key],
        Expires: now.Add(lease),
    }, true
}

// Unlock releases the lease when it is still the current holder.
// Releasing an expired or foreign lease is a no-op.
func (m *MemoryLocker) Unlock(_ context.Context, l *Lease) error {
    if l == nil {
        return nil
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    if e, ok := m.held[l.Key]; ok && e.token == l.Token {
        delete(m.held, l.Key)
    }
    return nil
}

// Held reports whether the lease is still in force.
func (m *MemoryLocker) Held(_ context.Context, l *Lease) (bool, error) {
    if l == nil {
        return false, nil
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    e, ok := m.held[l.Key]
    return ok && e.token == l.Token && time.Now().Before(e.expires), nil
}
