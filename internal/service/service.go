package service

import (
	"context"
	"time"

	"ovation/internal/external"
	"ovation/internal/locks"
	"ovation/internal/models"
	"ovation/internal/repository"
)

// EventCatalog is the coordinator's read surface over the event catalog plus
// the admin create path.
type EventCatalog interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, query string, page, pageSize int) ([]models.Event, error)
	ListSalePhases(ctx context.Context, eventID int64) ([]models.SalePhase, error)
}

// InventoryStore exposes the per-event, per-type counters. The conditional
// decrement is the sole mutation path for stock.
type InventoryStore interface {
	GetTicketType(ctx context.Context, eventID int64, name string) (*models.TicketType, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.TicketType, error)
	ConditionalDecrement(ctx context.Context, eventID int64, name string, amount int) (bool, error)
}

// ReservationLedger records purchase intents keyed by transaction id and
// commits confirmations atomically.
type ReservationLedger interface {
	Create(ctx context.Context, res *models.PendingReservation) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.PendingReservation, error)
	CommitConfirmation(ctx context.Context, res *models.PendingReservation, tickets []models.Ticket, decrement bool, paymentRef string) error
	DeleteStale(ctx context.Context, before time.Time) ([]models.PendingReservation, error)
}

// TicketStore persists and reads issued tickets.
type TicketStore interface {
	Insert(ctx context.Context, t *models.Ticket) error
	ListByTransactionID(ctx context.Context, transactionID string) ([]models.Ticket, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]models.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
}

// Publisher emits fire-and-forget domain events; failures are logged and
// never roll back the operation that produced them.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Searcher indexes and queries events for catalog text search.
type Searcher interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	SearchEvents(ctx context.Context, query string, page, pageSize int) ([]int64, error)
}

// Options carries the scalar settings the services need.
type Options struct {
	Currency string
	QRSecret string
}

type Services struct {
	Events       *EventService
	Reservations *ReservationService
	Tickets      *TicketService
}

func NewServices(repos *repository.Repositories, publisher Publisher, searcher Searcher, paymentClient *external.PaymentClient, locker locks.Locker, opts Options) *Services {
	issuer := NewIssuer(opts.QRSecret)

	eventService := NewEventService(repos.Events, repos.Inventory, repos.Tickets, searcher, publisher)
	reservationService := NewReservationService(repos.Reservations, repos.Tickets, repos.Inventory, repos.Events, locker, issuer, publisher, paymentClient, opts.Currency)
	ticketService := NewTicketService(repos.Tickets, repos.Events, issuer)

	return &Services{
		Events:       eventService,
		Reservations: reservationService,
		Tickets:      ticketService,
	}
}
