package handler

import (
    "context"
    "errors"
    "net/http"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/ticketflix/booking/internal/model"
    "github.com/ticketflix/booking/internal/repository"
)

// BookingAPI is the slice of the booking service the ticket handlers
// need.  Depending on the interface instead of the concrete service
// lets the handlers be tested with a fake.
type BookingAPI interface {
    SubmitBooking(ctx context.Context, userID, showID uint64, seats []string) error
    SubmitCancellation(ctx context.Context, ticketID string) error
    TicketByID(ctx context.Context, ticketID string) (*model.Ticket, error)
}

// TicketLister lists tickets per user and per show; implemented by
// repository.TicketRepo.
type TicketLister interface {
    ListByUser(ctx context.Context, userID uint64) ([]*model.Ticket, error)
    ListByShow(ctx context.Context, showID uint64) ([]*model.Ticket, error)
}

// TicketHandler serves booking submission, cancellation and ticket
// reads.  All routes assume JWT authentication ran first.
type TicketHandler struct {
    svc      BookingAPI
    tickets  TicketLister
    validate *validator.Validate
}

// NewTicketHandler constructs a TicketHandler.
func NewTicketHandler(svc BookingAPI, tickets TicketLister) *TicketHandler {
    if svc == nil || tickets == nil {
        panic("nil dependency passed to NewTicketHandler")
    }
    return &TicketHandler{svc: svc, tickets: tickets, validate: validator.New()}
}

// bookRequest is the body of POST /v1/shows/:id/tickets.  Seat-level
// format rules are enforced again by the service before any lock is
// taken; the tags here reject structurally broken requests early.
type bookRequest struct {
    Seats []string `json:"seats" validate:"required,min=1,max=10,dive,required"`
}

// Book handles POST /v1/shows/:id/tickets.  A successful submission
// returns 202 Accepted immediately: the durable commit happens
// asynchronously and the outcome is delivered via notification.
func (h *TicketHandler) Book(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    showID, err := parseID(c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
    }
    var body bookRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.validate.Struct(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    if err := h.svc.SubmitBooking(c.Request().Context(), userID, showID, body.Seats); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusAccepted, echo.Map{
        "status":  "accepted",
        "message": "booking request accepted, confirmation to follow",
    })
}

// Cancel handles DELETE /v1/tickets/:id.  Like booking, cancellation
// is accepted synchronously and applied by the queue consumer.
func (h *TicketHandler) Cancel(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ticketID := c.Param("id")
    if err := h.svc.SubmitCancellation(c.Request().Context(), ticketID); err != nil {
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusAccepted, echo.Map{
        "status":  "accepted",
        "message": "cancellation request accepted, confirmation to follow",
    })
}

// Get handles GET /v1/tickets/:id (cached read-through).
func (h *TicketHandler) Get(c echo.Context) error {
    if _, err := getUserID(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ticket, err := h.svc.TicketByID(c.Request().Context(), c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
        }
        return writeServiceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": ticketView(ticket)})
}

// MyTickets handles GET /v1/my-tickets.
func (h *TicketHandler) MyTickets(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tickets, err := h.tickets.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    items := make([]echo.Map, 0, len(tickets))
    for _, t := range tickets {
        items = append(items, ticketView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ShowTickets handles GET /v1/owner/shows/:id/tickets: every booking
// made for one show, newest first.
func (h *TicketHandler) ShowTickets(c echo.Context) error {
    showID, err := parseID(c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
    }
    tickets, err := h.tickets.ListByShow(c.Request().Context(), showID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    items := make([]echo.Map, 0, len(tickets))
    for _, t := range tickets {
        items = append(items, ticketView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ticketView shapes a ticket for JSON responses.
func ticketView(t *model.Ticket) echo.Map {
    v := echo.Map{
        "ticket_id":      t.TicketID,
        "show_id":        t.ShowID,
        "movie_title":    t.MovieTitle,
        "theater_name":   t.TheaterName,
        "show_starts_at": t.ShowStartsAt,
        "seats":          t.SeatNumbers(),
        "total_amount":   t.TotalAmount,
        "active":         t.Active(),
    }
    if t.CancelledAt != nil {
        v["cancelled_at"] = t.CancelledAt
    }
    return v
}
