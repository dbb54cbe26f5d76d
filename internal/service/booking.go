package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "regexp"
    "time"

    "github.com/google/uuid"

    "github.com/ticketflix/booking/internal/cache"
    "github.com/ticketflix/booking/internal/lock"
    "github.com/ticketflix/booking/internal/model"
    "github.com/ticketflix/booking/internal/queue"
    "github.com/ticketflix/booking/internal/repository"
)

// Seat-booking limits and default lock timings.  The lease must stay
// comfortably above the worst-case critical section (one show fetch
// plus one transactional write) so a lapsed lease stays a rare crash
// artifact rather than a steady-state hazard.
const (
    maxSeatsPerBooking = 10
    defaultLockWait    = 10 * time.Second
    defaultLockLease   = 30 * time.Second
    defaultCacheTTL    = 12 * time.Hour
)

// seatNumberPattern matches well-formed seat labels such as "A7" or
// "B12": one row letter followed by one or two digits.
var seatNumberPattern = regexp.MustCompile(`^[A-Z]\d{1,2}$`)

// Store is the durable-storage contract the coordinators depend on.
// CreateTicket and CancelTicket are transactional: they either apply
// the full seat/ticket mutation or nothing.
type Store interface {
    ShowWithSeats(ctx context.Context, showID uint64) (*model.Show, error)
    UserByID(ctx context.Context, userID uint64) (*model.User, error)
    TicketByID(ctx context.Context, ticketID string) (*model.Ticket, error)
    CreateTicket(ctx context.Context, t *model.Ticket, seats []string) error
    CancelTicket(ctx context.Context, t *model.Ticket, seats []string) error
}

// Publisher is the queue contract: at-least-once delivery of a JSON
// payload to a named durable queue.
type Publisher interface {
    Publish(ctx context.Context, queueName string, payload any) error
}

// BookingService orchestrates the two-phase booking protocol: the
// producer side validates, locks, pre-checks and enqueues; the
// consumer side re-locks, re-validates and performs the durable
// commit.  The same service also carries the cancellation counterpart.
// All collaborators are injected as narrow interfaces so the
// concurrency logic can be tested with in-memory fakes.
type BookingService struct {
    store    Store
    locker   lock.Locker
    bus      Publisher
    cache    cache.Cache
    trending TrendingCounter

    lockWait  time.Duration
    lockLease time.Duration
    cacheTTL  time.Duration
    now       func() time.Time
}

// Option tweaks a BookingService.
type Option func(*BookingService)

// WithLockTimings overrides the acquisition wait and lease durations.
func WithLockTimings(wait, lease time.Duration) Option {
    return func(s *BookingService) {
        if wait > 0 {
            s.lockWait = wait
        }
        if lease > 0 {
            s.lockLease = lease
        }
    }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
    return func(s *BookingService) { s.now = now }
}

// NewBookingService wires the coordinators.  All dependencies must be
// non-nil; pass cache.Noop / NoopTrending when Redis is unavailable.
func NewBookingService(store Store, locker lock.Locker, bus Publisher, c cache.Cache, trending TrendingCounter, opts ...Option) *BookingService {
    if store == nil || locker == nil || bus == nil || c == nil || trending == nil {
        panic("nil dependency passed to NewBookingService")
    }
    s := &BookingService{
        store:     store,
        locker:    locker,
        bus:       bus,
        cache:     c,
        trending:  trending,
        lockWait:  defaultLockWait,
        lockLease: defaultLockLease,
        cacheTTL:  defaultCacheTTL,
        now:       func() time.Time { return time.Now().UTC() },
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// SubmitBooking is the producer side of the booking protocol.  It
// validates the request, locks the seats in sorted order, verifies
// availability and hands the intent to the queue.  On success the
// caller gets an immediate "accepted"; the durable commit happens
// asynchronously in CommitBooking.  Locks are released on every exit
// path.
func (s *BookingService) SubmitBooking(ctx context.Context, userID, showID uint64, requestedSeats []string) error {
    if err := validateBookingInput(userID, showID, requestedSeats); err != nil {
        return err
    }

    set, err := lock.AcquireSeats(ctx, s.locker, showID, requestedSeats, s.lockWait, s.lockLease)
    if err != nil {
        if errors.Is(err, lock.ErrNotAcquired) {
            return &ConcurrencyError{Reason: fmt.Sprintf("could not lock requested seats (%v)", err)}
        }
        return fmt.Errorf("acquire seat locks: %w", err)
    }
    defer set.Release(ctx)

    show, err := s.store.ShowWithSeats(ctx, showID)
    if err != nil {
        if errors.Is(err, repository.ErrShowNotFound) {
            return &BusinessError{Reason: fmt.Sprintf("show %d not found", showID), NotFound: true}
        }
        return fmt.Errorf("load show %d: %w", showID, err)
    }
    if unavailable := UnavailableSeats(show, requestedSeats); len(unavailable) > 0 {
        return &BusinessError{Reason: fmt.Sprintf("seats unavailable: %v", unavailable)}
    }

    req := queue.BookingRequest{
        UserID:         userID,
        ShowID:         showID,
        RequestedSeats: requestedSeats,
        Valid:          true,
    }
    if err := s.bus.Publish(ctx, queue.BookingRequests, req); err != nil {
        return fmt.Errorf("enqueue booking request: %w", err)
    }

    log.Printf("booking: request accepted user=%d show=%d seats=%v", userID, showID, requestedSeats)
    return nil
}

// CommitBooking is the commit stage, invoked once per dequeued booking
// request and possibly redelivered.  It runs an independent lock cycle
// (the producer's locks are long gone), re-validates availability and
// performs the authoritative transactional state change.  Redelivery
// of an already-committed request fails the re-check and creates no
// second ticket.
func (s *BookingService) CommitBooking(ctx context.Context, req queue.BookingRequest) error {
    if !req.Valid {
        return &BusinessError{Reason: "booking request marked invalid"}
    }
    if err := validateBookingInput(req.UserID, req.ShowID, req.RequestedSeats); err != nil {
        return err
    }

    set, err := lock.AcquireSeats(ctx, s.locker, req.ShowID, req.RequestedSeats, s.lockWait, s.lockLease)
    if err != nil {
        if errors.Is(err, lock.ErrNotAcquired) {
            return &ConcurrencyError{Reason: fmt.Sprintf("could not lock seats for commit (%v)", err)}
        }
        return fmt.Errorf("acquire seat locks: %w", err)
    }
    defer set.Release(ctx)

    show, err := s.store.ShowWithSeats(ctx, req.ShowID)
    if err != nil {
        if errors.Is(err, repository.ErrShowNotFound) {
            return &BusinessError{Reason: fmt.Sprintf("show %d not found", req.ShowID), NotFound: true}
        }
        return fmt.Errorf("load show %d: %w", req.ShowID, err)
    }
    if unavailable := UnavailableSeats(show, req.RequestedSeats); len(unavailable) > 0 {
        return &BusinessError{Reason: fmt.Sprintf("seats no longer available: %v", unavailable)}
    }

    user, err := s.store.UserByID(ctx, req.UserID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return &BusinessError{Reason: fmt.Sprintf("user %d not found", req.UserID), NotFound: true}
        }
        return fmt.Errorf("load user %d: %w", req.UserID, err)
    }

    // The critical section so far has spent part of the lease on I/O.
    // Refuse to write if any lease lapsed: another worker may already
    // be inside its own critical section for these seats.
    held, err := set.StillHeld(ctx)
    if err != nil {
        return fmt.Errorf("verify seat leases: %w", err)
    }
    if !held {
        return &ConcurrencyError{Reason: "seat lease expired before commit"}
    }

    var total uint32
    for _, number := range req.RequestedSeats {
        total += show.Seat(number).Price
    }
    ticket := &model.Ticket{
        TicketID:     uuid.NewString(),
        ShowID:       show.ID,
        UserID:       user.ID,
        BookedSeats:  joinSeats(req.RequestedSeats),
        TotalAmount:  total,
        MovieTitle:   show.MovieTitle,
        TheaterName:  show.TheaterName,
        ShowStartsAt: show.StartsAt,
        CreatedAt:    s.now(),
    }
    if err := s.store.CreateTicket(ctx, ticket, req.RequestedSeats); err != nil {
        if errors.Is(err, repository.ErrSeatsTaken) {
            return &BusinessError{Reason: "seats no longer available"}
        }
        return fmt.Errorf("persist ticket: %w", err)
    }

    s.afterBookingCommit(ctx, ticket, user)
    log.Printf("booking: committed ticket=%s user=%d show=%d total=%d", ticket.TicketID, user.ID, show.ID, total)
    return nil
}

// afterBookingCommit runs the non-authoritative follow-ons: trending
// counter, confirmation event, email and cache invalidation.  None of
// them may fail the commit; errors are logged and dropped.
func (s *BookingService) afterBookingCommit(ctx context.Context, ticket *model.Ticket, user *model.User) {
    if err := s.trending.Bump(ctx, ticket.MovieTitle, 1); err != nil {
        log.Printf("booking: trending bump failed for %q: %v", ticket.MovieTitle, err)
    }

    event := queue.BookingConfirmedEvent{
        TicketID:    ticket.TicketID,
        UserID:      ticket.UserID,
        ShowID:      ticket.ShowID,
        MovieTitle:  ticket.MovieTitle,
        TheaterName: ticket.TheaterName,
        Seats:       ticket.SeatNumbers(),
        TotalAmount: ticket.TotalAmount,
        ConfirmedAt: s.now().Format(time.RFC3339),
    }
    if err := s.bus.Publish(ctx, queue.BookingConfirmed, event); err != nil {
        log.Printf("booking: publish confirmation event failed: %v", err)
    }

    mail := queue.EmailNotification{
        To:      user.Email,
        Subject: "Ticket Booking Confirmation - " + ticket.MovieTitle,
        Body:    confirmationEmail(ticket, user),
    }
    if err := s.bus.Publish(ctx, queue.EmailNotifications, mail); err != nil {
        log.Printf("booking: publish email notification failed: %v", err)
    }

    s.invalidateTicketCaches(ctx, ticket)
}

// SubmitCancellation validates that the ticket exists and is still
// active, then enqueues the cancellation intent.  No seat locks are
// needed at this stage; existence is checked against durable storage.
func (s *BookingService) SubmitCancellation(ctx context.Context, ticketID string) error {
    if ticketID == "" {
        return &ValidationError{Field: "ticketId", Reason: "ticket id is required"}
    }
    ticket, err := s.store.TicketByID(ctx, ticketID)
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return &BusinessError{Reason: fmt.Sprintf("ticket %s not found", ticketID), NotFound: true}
        }
        return fmt.Errorf("load ticket %s: %w", ticketID, err)
    }
    if !ticket.Active() {
        return &BusinessError{Reason: fmt.Sprintf("ticket %s already cancelled", ticketID)}
    }

    if err := s.bus.Publish(ctx, queue.CancellationRequests, queue.CancellationRequest{TicketID: ticketID}); err != nil {
        return fmt.Errorf("enqueue cancellation request: %w", err)
    }
    log.Printf("booking: cancellation accepted ticket=%s", ticketID)
    return nil
}

// CommitCancellation re-opens the ticket's seats.  It takes the same
// sorted per-seat locks as booking: cancellation only frees seats, but
// without the locks its read-modify-write could interleave with a
// concurrent booking commit on the same seat.  Redelivery of an
// already-applied cancellation is a no-op.
func (s *BookingService) CommitCancellation(ctx context.Context, req queue.CancellationRequest) error {
    ticket, err := s.store.TicketByID(ctx, req.TicketID)
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return &BusinessError{Reason: fmt.Sprintf("ticket %s not found", req.TicketID), NotFound: true}
        }
        return fmt.Errorf("load ticket %s: %w", req.TicketID, err)
    }
    if !ticket.Active() {
        log.Printf("booking: ticket %s already cancelled, skipping", req.TicketID)
        return nil
    }

    seats := ticket.SeatNumbers()
    set, err := lock.AcquireSeats(ctx, s.locker, ticket.ShowID, seats, s.lockWait, s.lockLease)
    if err != nil {
        if errors.Is(err, lock.ErrNotAcquired) {
            return &ConcurrencyError{Reason: fmt.Sprintf("could not lock seats for cancellation (%v)", err)}
        }
        return fmt.Errorf("acquire seat locks: %w", err)
    }
    defer set.Release(ctx)

    held, err := set.StillHeld(ctx)
    if err != nil {
        return fmt.Errorf("verify seat leases: %w", err)
    }
    if !held {
        return &ConcurrencyError{Reason: "seat lease expired before cancellation"}
    }

    if err := s.store.CancelTicket(ctx, ticket, seats); err != nil {
        if errors.Is(err, repository.ErrTicketCancelled) {
            // Lost a race with a concurrent delivery of the same
            // cancellation; the seats are already free.
            return nil
        }
        return fmt.Errorf("cancel ticket %s: %w", req.TicketID, err)
    }

    s.afterCancellationCommit(ctx, ticket, seats)
    log.Printf("booking: cancelled ticket=%s show=%d seats=%v", ticket.TicketID, ticket.ShowID, seats)
    return nil
}

// afterCancellationCommit mirrors afterBookingCommit for the
// cancellation path.
func (s *BookingService) afterCancellationCommit(ctx context.Context, ticket *model.Ticket, seats []string) {
    if err := s.trending.Bump(ctx, ticket.MovieTitle, -1); err != nil {
        log.Printf("booking: trending decrement failed for %q: %v", ticket.MovieTitle, err)
    }

    event := queue.BookingCancelledEvent{
        TicketID:    ticket.TicketID,
        UserID:      ticket.UserID,
        ShowID:      ticket.ShowID,
        MovieTitle:  ticket.MovieTitle,
        Seats:       seats,
        CancelledAt: s.now().Format(time.RFC3339),
    }
    if err := s.bus.Publish(ctx, queue.BookingCancelled, event); err != nil {
        log.Printf("booking: publish cancellation event failed: %v", err)
    }

    if user, err := s.store.UserByID(ctx, ticket.UserID); err == nil {
        mail := queue.EmailNotification{
            To:      user.Email,
            Subject: "Ticket Cancellation Confirmation - " + ticket.MovieTitle,
            Body:    cancellationEmail(ticket, user),
        }
        if err := s.bus.Publish(ctx, queue.EmailNotifications, mail); err != nil {
            log.Printf("booking: publish email notification failed: %v", err)
        }
    } else {
        log.Printf("booking: load user %d for cancellation mail failed: %v", ticket.UserID, err)
    }

    s.invalidateTicketCaches(ctx, ticket)
}

// validateBookingInput enforces the producer-side input contract.  It
// runs before any lock is taken, so a violation has no side effects.
func validateBookingInput(userID, showID uint64, seats []string) error {
    if userID == 0 {
        return &ValidationError{Field: "userId", Reason: "valid user id is required"}
    }
    if showID == 0 {
        return &ValidationError{Field: "showId", Reason: "valid show id is required"}
    }
    if len(seats) == 0 {
        return &ValidationError{Field: "requestedSeats", Reason: "at least one seat must be selected"}
    }
    if len(seats) > maxSeatsPerBooking {
        return &ValidationError{Field: "requestedSeats", Reason: fmt.Sprintf("cannot book more than %d seats at once", maxSeatsPerBooking)}
    }
    seen := make(map[string]struct{}, len(seats))
    for _, seat := range seats {
        if !seatNumberPattern.MatchString(seat) {
            return &ValidationError{Field: "requestedSeats", Reason: "invalid seat format: " + seat}
        }
        if _, dup := seen[seat]; dup {
            return &ValidationError{Field: "requestedSeats", Reason: "duplicate seat: " + seat}
        }
        seen[seat] = struct{}{}
    }
    return nil
}

func joinSeats(seats []string) string {
    out := ""
    for i, seat := range seats {
        if i > 0 {
            out += model.SeatSeparator
        }
        out += seat
    }
    return out
}

func confirmationEmail(t *model.Ticket, u *model.User) string {
    return fmt.Sprintf(
        "Dear %s,\n\nYour ticket has been successfully booked!\n\n"+
            "Movie: %s\nTheater: %s\nShowtime: %s\nSeats: %s\nTotal Amount: %d\nTicket ID: %s\n\n"+
            "Thank you for choosing TicketFlix!",
        u.Name, t.MovieTitle, t.TheaterName, t.ShowStartsAt.Format(time.RFC1123),
        t.BookedSeats, t.TotalAmount, t.TicketID,
    )
}

func cancellationEmail(t *model.Ticket, u *model.User) string {
    return fmt.Sprintf(
        "Dear %s,\n\nYour ticket %s for %s has been cancelled and the seats (%s) released.\n\n"+
            "We hope to see you again soon.",
        u.Name, t.TicketID, t.MovieTitle, t.BookedSeats,
    )
}
