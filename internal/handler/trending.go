package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
)

// TrendingAPI exposes the trending-movies counter read.
type TrendingAPI interface {
    TrendingMovies(ctx context.Context, n int64) ([]string, error)
}

// TrendingHandler serves GET /v1/movies/trending.
type TrendingHandler struct {
    svc TrendingAPI
}

// NewTrendingHandler constructs a TrendingHandler.
func NewTrendingHandler(svc TrendingAPI) *TrendingHandler {
    return &TrendingHandler{svc: svc}
}

// Top returns the ten most-booked movies.
func (h *TrendingHandler) Top(c echo.Context) error {
    movies, err := h.svc.TrendingMovies(c.Request().Context(), 10)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load trending movies"})
    }
    if movies == nil {
        movies = []string{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": movies})
}
