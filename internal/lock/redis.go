package lock

import (
    "context"
    "crypto/rand"
    "encoding/hex"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

// retryInterval is how often an acquisition attempt is repeated while
// the wait window is open.  Kept short so contended seats are picked up
// quickly after the previous holder releases.
const retryInterval = 50 * time.Millisecond

// releaseScript deletes the key only when it still carries our token.
// Without the token check a slow holder could delete a lock that has
// already expired and been re-acquired by another worker.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker implements Locker on top of a single Redis instance using
// SET NX PX for acquisition, a token-checked Lua release and a per-key
// INCR counter for fencing tokens.
type RedisLocker struct {
    rdb *redis.Client
}

// NewRedisLocker returns a Locker backed by the given Redis client.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
    if rdb == nil {
        panic("nil redis client passed to NewRedisLocker")
    }
    return &RedisLocker{rdb: rdb}
}

// TryLock obtains key with a lease of leaseFor, retrying until wait has
// elapsed.  Each successful acquisition increments the key's fence
// counter, so later holders always observe a larger fence.
func (r *RedisLocker) TryLock(ctx context.Context, key string, wait, leaseFor time.Duration) (*Lease, error) {
    token, err := randomToken()
    if err != nil {
        return nil, err
    }
    deadline := time.Now().Add(wait)
    for {
        ok, err := r.rdb.SetNX(ctx, key, token, leaseFor).Result()
        if err != nil {
            return nil, err
        }
        if ok {
            fence, err := r.rdb.Incr(ctx, key+":fence").Result()
            if err != nil {
                // The lock is held but the fence is unknown; back out
                // rather than hand the caller a lease it cannot trust.
                _ = releaseScript.Run(ctx, r.rdb, []string{key}, token).Err()
                return nil, err
            }
            return &Lease{
                Key:     key,
                Token:   token,
                Fence:   fence,
                Expires: time.Now().Add(leaseFor),
            }, nil
        }
        if time.Now().After(deadline) {
            return nil, ErrNotAcquired
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(retryInterval):
        }
    }
}

// Unlock releases the lease if it is still ours.  A lease that already
// expired, or whose key has been re-acquired by another worker, is left
// alone and no error is reported.
func (r *RedisLocker) Unlock(ctx context.Context, l *Lease) error {
    if l == nil {
        return nil
    }
    err := releaseScript.Run(ctx, r.rdb, []string{l.Key}, l.Token).Err()
    if err != nil && !errors.Is(err, redis.Nil) {
        return err
    }
    return nil
}

// Held reports whether the key still carries this lease's token.
func (r *RedisLocker) Held(ctx context.Context, l *Lease) (bool, error) {
    if l == nil {
        return false, nil
    }
    v, err := r.rdb.Get(ctx, l.Key).Result()
    if errors.Is(err, redis.Nil) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return v == l.Token, nil
}

// randomToken generates an opaque 16-byte hex token identifying one
// acquisition.
func randomToken() (string, error) {
    b := make([]byte, 16)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return hex.EncodeToString(b), nil
}
