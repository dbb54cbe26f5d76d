// Package worker binds the queue consumer to the commit stage.  Each
// registered handler decodes one message type and hands it to the
// booking service; the consumer's bounded-retry/dead-letter policy
// wraps around them.
package worker

import (
    "context"
    "encoding/json"
    "fmt"
    "log"

    "github.com/ticketflix/booking/internal/notify"
    "github.com/ticketflix/booking/internal/queue"
    "github.com/ticketflix/booking/internal/service"
)

// Register wires every queue the service consumes.  Booking and
// cancellation commits re-validate under lock, which is what makes the
// at-least-once redelivery of these messages safe.
func Register(c *queue.Consumer, svc *service.BookingService, mailer notify.Mailer) {
    c.Handle(queue.BookingRequests, func(ctx context.Context, body []byte) error {
        var req queue.BookingRequest
        if err := json.Unmarshal(body, &req); err != nil {
            return fmt.Errorf("unmarshal booking request: %w", err)
        }
        return svc.CommitBooking(ctx, req)
    })

    c.Handle(queue.CancellationRequests, func(ctx context.Context, body []byte) error {
        var req queue.CancellationRequest
        if err := json.Unmarshal(body, &req); err != nil {
            return fmt.Errorf("unmarshal cancellation request: %w", err)
        }
        return svc.CommitCancellation(ctx, req)
    })

    c.Handle(queue.EmailNotifications, func(_ context.Context, body []byte) error {
        var mail queue.EmailNotification
        if err := json.Unmarshal(body, &mail); err != nil {
            return fmt.Errorf("unmarshal email notification: %w", err)
        }
        // Fire and forget: a failed delivery is logged, not retried.
        if err := mailer.SendEmail(mail.To, mail.Subject, mail.Body); err != nil {
            log.Printf("worker: email to %s failed: %v", mail.To, err)
        }
        return nil
    })

    c.Handle(queue.BookingConfirmed, func(_ context.Context, body []byte) error {
        var ev queue.BookingConfirmedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal confirmation event: %w", err)
        }
        log.Printf("worker: booking confirmed ticket=%s show=%d seats=%v total=%d",
            ev.TicketID, ev.ShowID, ev.Seats, ev.TotalAmount)
        return nil
    })

    c.Handle(queue.BookingCancelled, func(_ context.Context, body []byte) error {
        var ev queue.BookingCancelledEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal cancellation event: %w", err)
        }
        log.Printf("worker: booking cancelled ticket=%s show=%d seats=%v",
            ev.TicketID, ev.ShowID, ev.Seats)
        return nil
    })
}
