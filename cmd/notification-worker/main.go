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
	httpapi "github.com/pawpaw-commerce/fulfillment-go/internal/http"
	"github.com/pawpaw-commerce/fulfillment-go/internal/mail"
	"github.com/pawpaw-commerce/fulfillment-go/internal/notification"
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

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
	renderer := notification.NewRenderer(cfg.BrandName)

	// --- AMQP ---
	client := rabbit.MustDial(cfg.RabbitURL)
	defer client.Close()

	consumer, err := rabbit.NewConsumer(client, cfg.NotificationQueue, "notification-worker", cfg.PrefetchCount, logger)
	if err != nil {
		logger.Fatalf("open consumer: %v", err)
	}

	if err := consumer.Start(ctx, notification.Handler(mailer, renderer, logger)); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}
	logger.Printf("consuming %s", cfg.NotificationQueue)

	// --- HTTP ---
	httpServer := &http.Server{
		Addr:              cfg.NotificationWorkerAddr,
		Handler:           httpapi.NewHealthRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("notification-worker listening on %s", cfg.NotificationWorkerAddr)
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

	select {
	case <-consumer.Done():
	case <-shutdownCtx.Done():
		logger.Printf("consumer drain timed out")
	}

	logger.Printf("shutdown complete")
}
