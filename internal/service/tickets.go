package service

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"

    "github.com/ticketflix/booking/internal/cache"
    "github.com/ticketflix/booking/internal/model"
)

// Cache key prefixes for ticket reads.  Invalidated together whenever
// a commit or cancellation touches the underlying rows.
const (
    ticketCachePrefix      = "ticket::"
    userTicketsCachePrefix = "user-tickets::"
    showTicketsCachePrefix = "show-tickets::"
)

// TicketByID returns one ticket, read through the cache.  The cache is
// an optimization only; a miss or a cache error falls through to the
// durable store.
func (s *BookingService) TicketByID(ctx context.Context, ticketID string) (*model.Ticket, error) {
    key := ticketCachePrefix + ticketID
    if raw, err := s.cache.Get(ctx, key); err == nil {
        var t model.Ticket
        if err := json.Unmarshal(raw, &t); err == nil {
            return &t, nil
        }
    } else if !errors.Is(err, cache.ErrMiss) {
        log.Printf("booking: cache read %s failed: %v", key, err)
    }

    ticket, err := s.store.TicketByID(ctx, ticketID)
    if err != nil {
        return nil, err
    }
    if raw, err := json.Marshal(ticket); err == nil {
        if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
            log.Printf("booking: cache write %s failed: %v", key, err)
        }
    }
    return ticket, nil
}

// ShowSeatMap returns the show with its current seat availability.
// This is an advisory view: the authoritative availability decision is
// always re-made under lock during commit.
func (s *BookingService) ShowSeatMap(ctx context.Context, showID uint64) (*model.Show, error) {
    return s.store.ShowWithSeats(ctx, showID)
}

// TrendingMovies returns the most-booked movie titles.
func (s *BookingService) TrendingMovies(ctx context.Context, n int64) ([]string, error) {
    return s.trending.Top(ctx, n)
}

// invalidateTicketCaches drops every cached view that may now be
// stale.  Best effort: a failed invalidation is logged, never
// propagated, because the cache is not a source of truth.
func (s *BookingService) invalidateTicketCaches(ctx context.Context, t *model.Ticket) {
    keys := []string{
        ticketCachePrefix + t.TicketID,
        userTicketsCachePrefix + fmt.Sprint(t.UserID),
        showTicketsCachePrefix + fmt.Sprint(t.ShowID),
    }
    if err := s.cache.Delete(ctx, keys...); err != nil {
        log.Printf("booking: cache invalidation failed for ticket %s: %v", t.TicketID, err)
    }
}
