// Package handler contains the thin HTTP glue over the booking
// coordinators.  Handlers translate transport concerns (binding, auth
// context, status codes) and delegate every decision to the service
// layer.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/ticketflix/booking/internal/service"
)

// getUserID extracts the authenticated user's id from the context,
// where the JWT middleware stored the token's subject claim.  JSON
// numbers arrive as float64; string subjects are parsed.
func getUserID(c echo.Context) (uint64, error) {
    switch v := c.Get("user_id").(type) {
    case float64:
        if v > 0 {
            return uint64(v), nil
        }
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
            return n, nil
        }
    case uint64:
        if v > 0 {
            return v, nil
        }
    }
    return 0, errors.New("no authenticated user in context")
}

// parseID parses a positive numeric path parameter.
func parseID(raw string) (uint64, error) {
    n, err := strconv.ParseUint(raw, 10, 64)
    if err != nil || n == 0 {
        return 0, errors.New("invalid id")
    }
    return n, nil
}

// writeServiceError maps the service error taxonomy onto HTTP:
// malformed input 400, contended seats 409 (retry later), missing
// resources 404, unavailable seats 422, everything else 500.
func writeServiceError(c echo.Context, err error) error {
    var ve *service.ValidationError
    if errors.As(err, &ve) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
    }
    var ce *service.ConcurrencyError
    if errors.As(err, &ce) {
        return c.JSON(http.StatusConflict, echo.Map{"error": ce.Error(), "retryable": true})
    }
    var be *service.BusinessError
    if errors.As(err, &be) {
        if be.NotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": be.Error()})
        }
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": be.Error()})
    }
    c.Logger().Error(err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
