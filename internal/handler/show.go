package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/ticketflix/booking/internal/model"
    "github.com/ticketflix/booking/internal/repository"
)

// SeatMapAPI exposes the advisory seat-map view of the booking
// service.
type SeatMapAPI interface {
    ShowSeatMap(ctx context.Context, showID uint64) (*model.Show, error)
}

// ShowHandler serves show creation (owner side) and the public seat
// map.  Seat inventory is generated row by row at creation time and is
// immutable afterwards.
type ShowHandler struct {
    shows    *repository.ShowRepo
    seatMap  SeatMapAPI
    validate *validator.Validate
}

// NewShowHandler constructs a ShowHandler.
func NewShowHandler(shows *repository.ShowRepo, seatMap SeatMapAPI) *ShowHandler {
    if shows == nil || seatMap == nil {
        panic("nil dependency passed to NewShowHandler")
    }
    return &ShowHandler{shows: shows, seatMap: seatMap, validate: validator.New()}
}

// seatRowSpec describes one row of the screen's layout: row letter,
// number of seats, class and per-seat price.
type seatRowSpec struct {
    Row   string `json:"row" validate:"required,len=1"`
    Seats int    `json:"seats" validate:"required,min=1,max=99"`
    Class string `json:"class" validate:"required,oneof=CLASSIC PREMIUM"`
    Price uint32 `json:"price" validate:"required"`
}

type createShowRequest struct {
    ScreenID    uint64        `json:"screen_id" validate:"required"`
    MovieTitle  string        `json:"movie_title" validate:"required"`
    TheaterName string        `json:"theater_name" validate:"required"`
    StartsAt    string        `json:"starts_at" validate:"required"`
    Layout      []seatRowSpec `json:"layout" validate:"required,min=1,dive"`
}

// Create handles POST /v1/owner/shows.  The show row and its full
// seat inventory are written in one transaction.
func (h *ShowHandler) Create(c echo.Context) error {
    var body createShowRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := h.validate.Struct(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
    }

    show := &model.Show{
        ScreenID:    body.ScreenID,
        MovieTitle:  body.MovieTitle,
        TheaterName: body.TheaterName,
        StartsAt:    startsAt,
    }
    for _, row := range body.Layout {
        for n := 1; n <= row.Seats; n++ {
            show.Seats = append(show.Seats, model.ShowSeat{
                SeatNumber: fmt.Sprintf("%s%d", row.Row, n),
                SeatClass:  row.Class,
                Price:      row.Price,
            })
        }
    }

    if err := h.shows.Create(c.Request().Context(), show); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create show"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "show_id": show.ID,
        "seats":   len(show.Seats),
    })
}

// SeatMap handles GET /v1/shows/:id/seats.  The availability shown
// here is advisory; the commit stage re-checks under lock.
func (h *ShowHandler) SeatMap(c echo.Context) error {
    showID, err := parseID(c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
    }
    show, err := h.seatMap.ShowSeatMap(c.Request().Context(), showID)
    if err != nil {
        if errors.Is(err, repository.ErrShowNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
        }
        return writeServiceError(c, err)
    }
    seats := make([]echo.Map, 0, len(show.Seats))
    for i := range show.Seats {
        seat := &show.Seats[i]
        seats = append(seats, echo.Map{
            "seat_number": seat.SeatNumber,
            "class":       seat.SeatClass,
            "price":       seat.Price,
            "booked":      seat.Booked,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "show_id":     show.ID,
        "movie_title": show.MovieTitle,
        "starts_at":   show.StartsAt,
        "available":   show.AvailableCount(),
        "seats":       seats,
    })
}
