// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer glue around them.  Delivery is
// at-least-once: every consumer-side handler must tolerate redelivery
// of a message it has already processed.
package queue

// Queue names.  Request queues carry intents from the producer side to
// the commit stage; the remaining queues carry follow-on side effects.
// A failed request message is routed to "<queue>.dlq" after the retry
// budget is spent.
const (
    BookingRequests      = "booking.requests"
    CancellationRequests = "booking.cancellations"
    BookingConfirmed     = "booking.confirmed"
    BookingCancelled     = "booking.cancelled"
    EmailNotifications   = "notify.email"
)

// DLQSuffix is appended to a queue name to form its dead-letter queue.
const DLQSuffix = ".dlq"

// BookingRequest travels producer→consumer after the producer-side
// pre-check passed.  It is not persisted anywhere else; the commit
// stage re-validates availability before mutating state, which is what
// makes redelivery safe.
type BookingRequest struct {
    UserID         uint64   `json:"user_id"`
    ShowID         uint64   `json:"show_id"`
    RequestedSeats []string `json:"requested_seats"`
    Valid          bool     `json:"valid"`
}

// CancellationRequest asks the commit stage to re-open the seats held
// by a ticket.  The ticket row itself is retained for audit.
type CancellationRequest struct {
    TicketID string `json:"ticket_id"`
}

// BookingConfirmedEvent is published after a booking commit succeeds.
// It carries enough information for downstream consumers to log,
// notify or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
    TicketID    string   `json:"ticket_id"`
    UserID      uint64   `json:"user_id"`
    ShowID      uint64   `json:"show_id"`
    MovieTitle  string   `json:"movie_title"`
    TheaterName string   `json:"theater_name"`
    Seats       []string `json:"seats"`
    TotalAmount uint32   `json:"total_amount"`
    ConfirmedAt string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation commit has
// re-opened the seats.
type BookingCancelledEvent struct {
    TicketID    string   `json:"ticket_id"`
    UserID      uint64   `json:"user_id"`
    ShowID      uint64   `json:"show_id"`
    MovieTitle  string   `json:"movie_title"`
    Seats       []string `json:"seats"`
    CancelledAt string   `json:"cancelled_at"`
}

// EmailNotification is a fire-and-forget mail request drained by the
// notification consumer.  Failures are logged, never retried.
type EmailNotification struct {
    To      string `json:"to"`
    Subject string `json:"subject"`
    Body    string `json:"body"`
}
