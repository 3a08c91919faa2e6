// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Shivanand-hulikatti/villa-booking/internal/catalog"
	"github.com/Shivanand-hulikatti/villa-booking/internal/config"
	"github.com/Shivanand-hulikatti/villa-booking/internal/currency"
	"github.com/Shivanand-hulikatti/villa-booking/internal/database"
	"github.com/Shivanand-hulikatti/villa-booking/internal/handler"
	"github.com/Shivanand-hulikatti/villa-booking/internal/metrics"
	"github.com/Shivanand-hulikatti/villa-booking/internal/mq"
	"github.com/Shivanand-hulikatti/villa-booking/internal/obs"
	"github.com/Shivanand-hulikatti/villa-booking/internal/repository"
	"github.com/Shivanand-hulikatti/villa-booking/internal/service"
)

const serviceName = "villa-booking"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ── 1. Tracing and metrics ───────────────────────────────────────────
	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	m := metrics.New(prometheus.DefaultRegisterer)

	// ── 2. Unit catalog ───────────────────────────────────────────────────
	units := catalog.Default()
	if cfg.UnitsFile != "" {
		if units, err = config.LoadUnits(cfg.UnitsFile); err != nil {
			log.Fatalf("units: %v", err)
		}
	}
	cat, err := catalog.New(units)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	log.Printf("✓ Loaded %d units", len(units))

	// ── 3. Exchange rate ──────────────────────────────────────────────────
	convOpts := []currency.Option{
		currency.WithSource(currency.NewHTTPSource(cfg.RateSourceURL, cfg.LocalCurrency)),
		currency.WithObserver(m),
	}
	if cfg.RedisAddr != "" {
		rdb := repository.NewRedisClient(cfg.Redis())
		defer rdb.Close()
		if err := repository.PingRedis(ctx, rdb); err != nil {
			log.Printf("redis unavailable, rate cache disabled: %v", err)
		} else {
			convOpts = append(convOpts, currency.WithCache(repository.NewRateCache(rdb, cfg.LocalCurrency, 0)))
			log.Println("✓ Connected to Redis")
		}
	}
	conv := currency.NewConverter(cfg.LocalCurrency, cfg.DefaultExchangeRate, convOpts...)
	conv.Warm(ctx)
	go conv.Run(ctx, cfg.RateRefresh)

	// ── 4. Stores ─────────────────────────────────────────────────────────
	var (
		store  service.ReservationStore
		ledger service.RevenueLedger
		opts   = []service.Option{service.WithRecorder(m)}
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatalf("database: %v", err)
		}
		log.Println("✓ Connected to PostgreSQL")
		store = repository.NewReservationRepository(pool)
		ledger = repository.NewRevenueRepository(pool)
		opts = append(opts, service.WithTransactor(repository.NewTxManager(pool)))
	default:
		store = repository.NewMemoryReservationStore()
		ledger = repository.NewMemoryRevenueLedger()
		log.Println("✓ Using in-memory store")
	}

	// ── 5. Event outbox ───────────────────────────────────────────────────
	var sink mq.JSONPublisher = mq.LogPublisher{}
	if cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.ReservationExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		defer pub.Close()
		sink = pub
		log.Printf("✓ Publishing events to exchange %s", cfg.ReservationExchange)
	}
	// The outbox outlives ctx so events from requests drained by Shutdown
	// are still delivered.
	outbox := mq.NewOutbox(sink, cfg.OutboxBuffer, m)
	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	outboxDone := make(chan struct{})
	go func() {
		outbox.Run(outboxCtx)
		close(outboxDone)
	}()
	opts = append(opts, service.WithEvents(outbox))

	// ── 6. Service and router ─────────────────────────────────────────────
	svc := service.NewReservationService(cat, conv, store, ledger, opts...)
	router := handler.NewRouter(handler.New(svc, conv), prometheus.DefaultGatherer)

	// ── 7. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server listening on %s (local currency %s, rate %.2f)",
			cfg.HTTPAddr, conv.LocalCurrency(), conv.Rate())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
	stopOutbox()
	<-outboxDone
	log.Println("server stopped")
}
