package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/booking"
	"github.com/iliyamo/cinema-booking/internal/catalog"
	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/database"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/pricing"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/router"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	engine := pricing.Engine{AllowDiscounts: cfg.AllowDiscounts}
	retry := database.RetryPolicy{
		MaxAttempts: cfg.Booking.MaxAttempts,
		BaseDelay:   cfg.Booking.RetryBaseDelay,
		MaxDelay:    cfg.Booking.RetryMaxDelay,
	}
	manager := booking.NewManager(db, catalog.NewStore(db), engine, retry, log.WithField("component", "booking"))
	resolver := booking.NewResolver(db, engine)
	explorer := catalog.NewExplorer(db, engine)

	// Booking events: outbox relay on a schedule, consumer in the background.
	publisher := queue.NewPublisher(cfg.RabbitURL, log.WithField("component", "publisher"))
	defer publisher.Close()
	relay := queue.NewRelay(repository.NewOutboxRepo(db), publisher, cfg.Outbox.BatchSize, log.WithField("component", "relay"))
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		log.WithError(err).Fatal("create scheduler")
	}
	if _, err := relay.Schedule(scheduler, cfg.Outbox.RelayInterval); err != nil {
		log.WithError(err).Fatal("schedule outbox relay")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.WithError(err).Warn("scheduler shutdown")
		}
	}()

	consumer := queue.NewConsumer(cfg.RabbitURL, "", log.WithField("component", "consumer"))
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("booking consumer stopped")
		}
	}()

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	httpLog := log.WithField("component", "http")
	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		DB:        db,
		Bookings:  handler.NewBookingHandler(manager, resolver, httpLog),
		Catalog:   handler.NewCatalogHandler(explorer, httpLog),
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       httpLog,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "db": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
