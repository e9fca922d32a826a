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
	"github.com/pawpaw-commerce/fulfillment-go/internal/orders"
	"github.com/pawpaw-commerce/fulfillment-go/internal/product"
	"github.com/pawpaw-commerce/fulfillment-go/internal/rabbit"
	"github.com/pawpaw-commerce/fulfillment-go/internal/user"
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

	// --- AMQP ---
	client := rabbit.MustDial(cfg.RabbitURL)
	defer client.Close()

	wire, err := rabbit.NewQueuePublisher(client, cfg.NotificationQueue, cfg.InventoryQueue)
	if err != nil {
		logger.Fatalf("open publisher: %v", err)
	}
	defer wire.Close()

	pub := orders.NewPublisher(wire, orders.Queues{
		Inventory:    cfg.InventoryQueue,
		Notification: cfg.NotificationQueue,
	})

	// --- HTTP ---
	h := httpapi.NewOrderHandler(
		user.NewPostgresRepository(pool),
		product.NewPostgresRepository(pool),
		orders.NewPostgresRepository(pool),
		pub,
		logger,
	)
	r := httpapi.NewOrderRouter(h)

	httpServer := &http.Server{
		Addr:              cfg.OrderAPIAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("order-api listening on %s", cfg.OrderAPIAddr)
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
		// Broker connectivity is never swallowed; exit and let the
		// supervisor restart the process.
		logger.Printf("rabbitmq connection lost: %v", amqpErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
