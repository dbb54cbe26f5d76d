package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/ticketflix/booking/internal/cache"
    "github.com/ticketflix/booking/internal/config"
    "github.com/ticketflix/booking/internal/database"
    "github.com/ticketflix/booking/internal/handler"
    "github.com/ticketflix/booking/internal/lock"
    "github.com/ticketflix/booking/internal/notify"
    "github.com/ticketflix/booking/internal/queue"
    "github.com/ticketflix/booking/internal/repository"
    "github.com/ticketflix/booking/internal/router"
    "github.com/ticketflix/booking/internal/service"
    "github.com/ticketflix/booking/internal/worker"
)

func main() {
    _ = godotenv.Load() // .env is optional; real env vars win
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    store := repository.NewStore(db)

    // Redis backs the seat locks, the ticket cache and the trending
    // counter.  Without it the service still runs: locking falls back
    // to the in-process locker (single-node only) and the caches
    // become no-ops.
    rdb := config.NewRedisClient()
    var (
        locker   lock.Locker
        c        cache.Cache             = cache.Noop{}
        trending service.TrendingCounter = service.NoopTrending{}
    )
    if rdb != nil {
        locker = lock.NewRedisLocker(rdb)
        c = cache.NewRedis(rdb)
        trending = service.NewRedisTrending(rdb)
    } else {
        log.Printf("redis unavailable; using in-process seat locks (single node only)")
        locker = lock.NewMemoryLocker()
    }

    bus := queue.NewPublisher(queue.BrokerURL())
    svc := service.NewBookingService(store, locker, bus, c, trending,
        service.WithLockTimings(cfg.LockWait, cfg.LockLease))

    var mailer notify.Mailer = notify.LogMailer{}
    if smtp := notify.NewSMTPMailer(); smtp != nil {
        mailer = smtp
    }

    // Queue consumers drain the commit stage and the notification
    // side effects in the background for the lifetime of the process.
    consumer := queue.NewConsumer(queue.BrokerURL())
    worker.Register(consumer, svc, mailer)
    go func() {
        if err := consumer.Start(context.Background()); err != nil {
            log.Printf("queue-consumer: stopped: %v", err)
        }
    }()

    e := echo.New()
    tickets := handler.NewTicketHandler(svc, store.Tickets)
    shows := handler.NewShowHandler(store.Shows, svc)
    trendingH := handler.NewTrendingHandler(svc)
    router.Register(e, tickets, shows, trendingH, cfg, rdb)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
