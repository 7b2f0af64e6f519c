package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NATS Event Types
const (
	EventEventCreated        = "event.created"
	EventReservationCreated  = "reservation.created"
	EventReservationExpired  = "reservation.expired"
	EventTicketIssued        = "ticket.issued"
	EventInventoryExhausted  = "inventory.exhausted"
)

// EventCreatedEvent represents a new catalog event to be indexed for search
type EventCreatedEvent struct {
	EventID   int64     `json:"event_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// ReservationCreatedEvent represents a newly recorded purchase intent
type ReservationCreatedEvent struct {
	TransactionID string          `json:"transaction_id"`
	BuyerID       int64           `json:"buyer_id"`
	EventID       int64           `json:"event_id"`
	TicketType    string          `json:"ticket_type"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ReservationExpiredEvent represents a pending reservation removed by the reaper
type ReservationExpiredEvent struct {
	TransactionID string    `json:"transaction_id"`
	EventID       int64     `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// TicketIssuedEvent represents a completed confirmation with issued tickets
type TicketIssuedEvent struct {
	TransactionID string    `json:"transaction_id"`
	BuyerID       int64     `json:"buyer_id"`
	EventID       int64     `json:"event_id"`
	TicketType    string    `json:"ticket_type"`
	Quantity      int       `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
}

// InventoryExhaustedEvent represents a confirmation rejected for lack of stock
type InventoryExhaustedEvent struct {
	TransactionID string    `json:"transaction_id"`
	EventID       int64     `json:"event_id"`
	TicketType    string    `json:"ticket_type"`
	Requested     int       `json:"requested"`
	Timestamp     time.Time `json:"timestamp"`
}
