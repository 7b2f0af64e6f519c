package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"ovation/internal/models"
	"ovation/internal/repository"
	"ovation/internal/search"
)

type Handlers struct {
	repos    *repository.Repositories
	esClient *search.ElasticsearchClient
}

func NewHandlers(repos *repository.Repositories, esClient *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		repos:    repos,
		esClient: esClient,
	}
}

// HandleEventCreated indexes a new catalog event for search. Indexing off the
// request path keeps event creation fast and tolerant of a slow cluster.
func (h *Handlers) HandleEventCreated(m *stan.Msg) {
	var event models.EventCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal event created event", "error", err)
		return
	}

	slog.Info("Processing event created event", "event_id", event.EventID, "title", event.Title)

	if h.esClient != nil {
		ctx := context.Background()
		catalogEvent, err := h.repos.Events.GetByID(ctx, event.EventID)
		if err != nil {
			slog.Error("Failed to load event for indexing", "event_id", event.EventID, "error", err)
			return
		}
		if catalogEvent != nil {
			if err := h.esClient.IndexEvent(ctx, catalogEvent); err != nil {
				slog.Error("Failed to index event", "event_id", event.EventID, "error", err)
				return
			}
		}
	}

	m.Ack()
}

// HandleReservationCreated is the notification boundary for new purchase
// intents. Delivery of buyer-facing messages lives outside this system.
func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	var event models.ReservationCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation created event", "error", err)
		return
	}

	slog.Info("Processing reservation created event",
		"transaction_id", event.TransactionID,
		"event_id", event.EventID,
		"ticket_type", event.TicketType,
		"quantity", event.Quantity)

	m.Ack()
}

// HandleReservationExpired logs reservations removed by the reaper.
func (h *Handlers) HandleReservationExpired(m *stan.Msg) {
	var event models.ReservationExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal reservation expired event", "error", err)
		return
	}

	slog.Info("Processing reservation expired event",
		"transaction_id", event.TransactionID,
		"event_id", event.EventID)

	m.Ack()
}

// HandleTicketIssued is the notification boundary for completed purchases.
func (h *Handlers) HandleTicketIssued(m *stan.Msg) {
	var event models.TicketIssuedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket issued event", "error", err)
		return
	}

	slog.Info("Processing ticket issued event",
		"transaction_id", event.TransactionID,
		"buyer_id", event.BuyerID,
		"event_id", event.EventID,
		"quantity", event.Quantity)

	m.Ack()
}

// HandleInventoryExhausted logs sold-out rejections for operators.
func (h *Handlers) HandleInventoryExhausted(m *stan.Msg) {
	var event models.InventoryExhaustedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal inventory exhausted event", "error", err)
		return
	}

	slog.Warn("Processing inventory exhausted event",
		"transaction_id", event.TransactionID,
		"event_id", event.EventID,
		"ticket_type", event.TicketType,
		"requested", event.Requested)

	m.Ack()
}
