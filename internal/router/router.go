// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/ticketflix/booking/internal/config"
    "github.com/ticketflix/booking/internal/handler"
    "github.com/ticketflix/booking/internal/middleware"
)

// Register wires every route of the service.  Public endpoints carry
// no auth; customer endpoints require a valid JWT and either role;
// owner endpoints require the OWNER role.  Booking submission sits
// behind the Redis token bucket so a rush cannot starve the lock
// service.
func Register(e *echo.Echo, tickets *handler.TicketHandler, shows *handler.ShowHandler, trending *handler.TrendingHandler, cfg config.Config, rdb *redis.Client) {
    e.GET("/healthz", handler.Health)

    // Public browse endpoints.
    e.GET("/v1/shows/:id/seats", shows.SeatMap)
    e.GET("/v1/movies/trending", trending.Top)

    // Customer endpoints.
    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(cfg.JWTSecret))
    auth.Use(middleware.RequireRole("OWNER", "CUSTOMER"))
    auth.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    auth.POST("/shows/:id/tickets", tickets.Book)
    auth.DELETE("/tickets/:id", tickets.Cancel)
    auth.GET("/tickets/:id", tickets.Get)
    auth.GET("/my-tickets", tickets.MyTickets)

    // Owner endpoints.
    owner := e.Group("/v1/owner")
    owner.Use(middleware.JWTAuth(cfg.JWTSecret))
    owner.Use(middleware.RequireRole("OWNER"))
    owner.POST("/shows", shows.Create)
    owner.GET("/shows/:id/tickets", tickets.ShowTickets)
}
