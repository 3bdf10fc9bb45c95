package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/config"
	"github.com/iliyamo/cinema-booking-session/internal/database"
	"github.com/iliyamo/cinema-booking-session/internal/handler"
	"github.com/iliyamo/cinema-booking-session/internal/logger"
	"github.com/iliyamo/cinema-booking-session/internal/metrics"
	"github.com/iliyamo/cinema-booking-session/internal/queue"
	"github.com/iliyamo/cinema-booking-session/internal/repository"
	"github.com/iliyamo/cinema-booking-session/internal/router"
	"github.com/iliyamo/cinema-booking-session/internal/session"
	"github.com/iliyamo/cinema-booking-session/internal/upstream"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	m := metrics.New()

	// Redis backs rate limiting and the showtime cache.  Both degrade to
	// pass-through when it is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	// The MySQL draft store is optional.  Without it idempotency keys live
	// only in process memory and do not survive a restart.
	var store session.DraftStore = session.NopDraftStore{}
	var draftHandler *handler.DraftHandler
	if cfg.DBHost != "" {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		repo := repository.NewDraftRepo(db)
		store = repo
		draftHandler = handler.NewDraftHandler(repo, log)
	} else {
		log.Warn("DB_HOST not set, draft persistence disabled")
	}

	showtimes := upstream.NewShowtimeClient(cfg.ShowtimeAPIURL, cfg.UpstreamToken, cfg.FetchTimeout, log)
	inventory := upstream.NewInventoryClient(cfg.InventoryAPIURL, cfg.UpstreamToken, cfg.FetchTimeout, log)
	booking := upstream.NewBookingClient(cfg.BookingAPIURL, cfg.UpstreamToken, cfg.SubmitTimeout, log)

	hub := session.NewHub(inventory, booking, store, session.HubConfig{
		SessionTTL:   cfg.SessionTTL,
		PollInterval: cfg.PollInterval,
		FetchTimeout: cfg.FetchTimeout,
	}, log)

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "booking_sessions_active",
			Help: "Number of live booking sessions",
		},
		func() float64 { return float64(hub.Len()) },
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.StartSweeper(ctx)
	go queue.StartSeatUpdateConsumer(hub, log)

	sessions := handler.NewSessionHandler(hub, m, log,
		handler.NewMetricsObserver(m),
		queue.NewConfirmedPublisher(log),
	)

	e := router.New(router.Deps{
		Config:    cfg,
		Metrics:   m,
		Redis:     rdb,
		Showtimes: handler.NewShowtimeHandler(showtimes),
		Sessions:  sessions,
		Drafts:    draftHandler,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	<-ctx.Done()
	log.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
