package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ovation/cmd/consumers/jobs"
	"ovation/internal/config"
	"ovation/internal/consumers"
	"ovation/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log.Println("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "ovation-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	// The reaper runs alongside the consumers so a single process owns all
	// background work.
	reaper := jobs.NewReservationReaperJob(
		consumerService.Repos().Reservations,
		consumerService.NATS(),
		cfg.ReservationTTL,
		cfg.ReaperInterval,
	)
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	reaper.Start(jobCtx)

	log.Println("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumers service...")

	reaper.Stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Consumers service stopped")
}
