package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest - request body for creating an event
type CreateEventRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	OrganizedBy string                   `json:"organized_by" binding:"required"`
	EventDate   time.Time                `json:"event_date" binding:"required"`
	EventTime   string                   `json:"event_time"`
	Location    string                   `json:"location"`
	Image       string                   `json:"image"`
	TicketPrice decimal.Decimal          `json:"ticket_price"`
	TicketTypes []CreateTicketTypeInput  `json:"ticket_types"`
	SalePhases  []CreateSalePhaseInput   `json:"sale_phases"`
}

// CreateTicketTypeInput - one inventory tier of a new event
type CreateTicketTypeInput struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
}

// CreateSalePhaseInput - one discount window of a new event
type CreateSalePhaseInput struct {
	PhaseName       string    `json:"phase_name" binding:"required"`
	StartDate       time.Time `json:"start_date" binding:"required"`
	EndDate         time.Time `json:"end_date" binding:"required"`
	DiscountPercent int       `json:"discount_percent"`
}

// CreateEventResponse - response for event creation
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// ListEventsResponseItem - one element of the events list
type ListEventsResponseItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	OrganizedBy string    `json:"organized_by"`
	EventDate   time.Time `json:"event_date"`
	Location    string    `json:"location"`
}

// ListEventsResponse - events list
type ListEventsResponse []ListEventsResponseItem

// TicketTypeView - an inventory tier with the price effective right now
type TicketTypeView struct {
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	EffectivePrice    decimal.Decimal `json:"effective_price"`
	QuantityAvailable int             `json:"quantity_available"`
}

// EventDetailResponse - single event with its purchasable tiers
type EventDetailResponse struct {
	Event       *Event           `json:"event"`
	TicketTypes []TicketTypeView `json:"ticket_types"`
}

// InitiateReservationRequest - request body for starting a checkout
type InitiateReservationRequest struct {
	EventID    int64  `json:"event_id" binding:"required"`
	TicketType string `json:"ticket_type" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// PaymentFormData - fields the client forwards to the payment gateway
type PaymentFormData struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Token         string `json:"token"`
	PayURL        string `json:"pay_url"`
}

// InitiateReservationResponse - response for a started checkout
type InitiateReservationResponse struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentForm   PaymentFormData `json:"payment_form"`
}

// ConfirmReservationRequest - payment confirmation callback body
type ConfirmReservationRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	PaymentRef    string `json:"payment_ref"`
}

// ConfirmReservationResponse - tickets issued for a confirmed reservation
type ConfirmReservationResponse struct {
	TransactionID string   `json:"transaction_id"`
	Tickets       []Ticket `json:"tickets"`
}

// BookDirectRequest - single-unit purchase with no separate payment step
type BookDirectRequest struct {
	EventID    int64  `json:"event_id" binding:"required"`
	TicketType string `json:"ticket_type" binding:"required"`
	BuyerName  string `json:"buyer_name" binding:"required"`
	BuyerEmail string `json:"buyer_email" binding:"required"`
}

// TicketView - a ticket with its price as reported today
type TicketView struct {
	Ticket         Ticket          `json:"ticket"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

// VerifyTicketRequest - scan-side QR verification request
type VerifyTicketRequest struct {
	QRPayload string `json:"qr_payload" binding:"required"`
}

// VerifyTicketResponse - decoded QR claims for a valid payload
type VerifyTicketResponse struct {
	Valid         bool      `json:"valid"`
	BuyerID       int64     `json:"buyer_id,omitempty"`
	EventID       int64     `json:"event_id,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	UnitIndex     int       `json:"unit_index,omitempty"`
	IssuedAt      time.Time `json:"issued_at,omitempty"`
}

// PaymentNotificationPayload - webhook body from the payment gateway
type PaymentNotificationPayload struct {
	TransactionID string                 `json:"transactionId" binding:"required"`
	PaymentRef    string                 `json:"paymentRef"`
	Status        string                 `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	Data          map[string]interface{} `json:"data"`
}

// AnalyticsTypeBreakdown - per-tier sales figures
type AnalyticsTypeBreakdown struct {
	TicketType string          `json:"ticket_type"`
	Sold       int             `json:"sold"`
	Available  int             `json:"available"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// AnalyticsResponse - sales summary for one event
type AnalyticsResponse struct {
	EventID       int64                    `json:"event_id"`
	TicketsIssued int                      `json:"tickets_issued"`
	TotalRevenue  decimal.Decimal          `json:"total_revenue"`
	ByType        []AnalyticsTypeBreakdown `json:"by_type"`
}
