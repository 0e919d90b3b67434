package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"foodorder/internal/cache"
	"foodorder/internal/config"
	"foodorder/internal/db"
	"foodorder/internal/delivery"
	"foodorder/internal/httpserver"
	"foodorder/internal/messaging"
	"foodorder/internal/messaging/kafka"
	"foodorder/internal/messaging/memory"
	"foodorder/internal/metrics"
	"foodorder/internal/payment"
	"foodorder/internal/projection"
	cartrepo "foodorder/internal/repository/cart"
	menurepo "foodorder/internal/repository/menu"
	orderrepo "foodorder/internal/repository/order"
	userrepo "foodorder/internal/repository/user"
	cartsvc "foodorder/internal/service/cart"
	checkoutsvc "foodorder/internal/service/checkout"
	ordersvc "foodorder/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var (
		pub messaging.Publisher
		sub messaging.Subscriber
	)
	if kb := kafka.New(cfg.KafkaBrokers, logger); kb != nil {
		defer kb.Close()
		pub, sub = kb, kb
		logger.Printf("using kafka brokers %s", cfg.KafkaBrokers)
	} else {
		mem := memory.New(logger)
		pub, sub = mem, mem
		logger.Printf("no kafka brokers configured, using in-process broker")
	}

	badges := cache.Noop()
	if cfg.RedisAddr != "" {
		badges = cache.NewRedis(cfg.RedisAddr, logger)
	}

	m := metrics.New()
	gateway := payment.NewHTTP(cfg.PaymentBaseURL, &http.Client{Timeout: cfg.PaymentTimeout})

	menuRepo := menurepo.NewPostgres(dbpool)
	userDir := userrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)

	cartService := cartsvc.New(cartRepo, menuRepo, badges, pub, logger)
	orderService := ordersvc.New(orderRepo, pub, m, logger)
	checkoutService := checkoutsvc.New(orderRepo, gateway, badges, pub, m, logger, cfg.GroundFeeCents, cfg.AerialFeeCents)
	views := projection.NewViews(orderRepo, menuRepo, logger)

	consumeCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()

	hub := projection.NewHub(logger)
	go func() {
		if err := hub.Run(consumeCtx, sub); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("projection hub stopped: %v", err)
		}
	}()

	tracker := delivery.NewTracker(logger)
	go func() {
		if err := tracker.Run(consumeCtx, sub); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("delivery tracker stopped: %v", err)
		}
	}()

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Cart:      cartService,
		Checkout:  checkoutService,
		Orders:    orderService,
		Views:     views,
		Catalog:   menuRepo,
		Users:     userDir,
		Hub:       hub,
		Positions: tracker,
		Metrics:   m,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopConsumers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
