package consumers

import (
	"context"
	"log/slog"

	"ovation/internal/config"
	"ovation/internal/database"
	"ovation/internal/logger"
	"ovation/internal/messaging"
	"ovation/internal/repository"
	"ovation/internal/search"
)

// ConsumerService runs the durable NATS queue consumers: search indexing and
// the notification boundary.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)

	var esClient *search.ElasticsearchClient
	esClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Get().Warn("Elasticsearch unavailable, event indexing disabled", "error", err)
		esClient = nil
	}

	handlers := NewHandlers(repos, esClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	_, err := cs.nats.SubscribeQueue("event.created", "consumers", cs.handlers.HandleEventCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("reservation.created", "consumers", cs.handlers.HandleReservationCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("reservation.expired", "consumers", cs.handlers.HandleReservationExpired)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("ticket.issued", "consumers", cs.handlers.HandleTicketIssued)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("inventory.exhausted", "consumers", cs.handlers.HandleInventoryExhausted)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// DB exposes the shared connection for the background jobs run alongside the
// consumers.
func (cs *ConsumerService) DB() *database.DB {
	return cs.db
}

// NATS exposes the shared messaging client for the background jobs.
func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

// Repos exposes the repositories for the background jobs.
func (cs *ConsumerService) Repos() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
