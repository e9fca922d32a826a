package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pawpaw-commerce/fulfillment-go/internal/config"
	"github.com/pawpaw-commerce/fulfillment-go/internal/db"
	httpapi "github.com/pawpaw-commerce/fulfillment-go/internal/http"
	"github.com/pawpaw-commerce/fulfillment-go/internal/inventory"
	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
	"github.com/pawpaw-commerce/fulfillment-go/internal/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	repo := product.NewPostgresRepository(pool)

	// --- AMQP ---
	client := rabbit.MustDial(cfg.RabbitURL)
	defer client.Close()

	alertWire, err := rabbit.NewQueuePublisher(client, cfg.NotificationQueue)
	if err != nil {
		logger.Fatalf("open alert publisher: %v", err)
	}
	defer alertWire.Close()

	alerts := inventory.NewLowStockPublisher(alertWire, cfg.NotificationQueue, cfg.AlertEmail, cfg.AlertName)

	consumer, err := rabbit.NewConsumer(client, cfg.InventoryQueue, "inventory-worker", cfg.PrefetchCount, logger)
	if err != nil {
		logger.Fatalf("open consumer: %v", err)
	}

	handler := inventory.AdjustmentHandler(repo, alerts, logger, cfg.LowStockThreshold)
	if err := consumer.Start(ctx, handler); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}
	logger.Printf("consuming %s (threshold=%d)", cfg.InventoryQueue, cfg.LowStockThreshold)

	// --- HTTP ---
	h := httpapi.NewStockHandler(repo)
	r := httpapi.NewStockRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.InventoryWorkerAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("inventory-worker listening on %s", cfg.InventoryWorkerAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	case amqpErr := <-client.CloseNotify():
		logger.Printf("rabbitmq connection lost: %v", amqpErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	// Let in-flight deliveries finish before the process exits.
	select {
	case <-consumer.Done():
	case <-shutdownCtx.Done():
		logger.Printf("consumer drain timed out")
	}

	logger.Printf("shutdown complete")
}
