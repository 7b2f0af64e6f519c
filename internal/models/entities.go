package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recognized ticket type names.
const (
	TicketTypeGeneral = "General"
	TicketTypeFanFest = "FanFest"
	TicketTypeVIP     = "VIP"
)

// TicketTypeNames lists the recognized ticket types in catalog order.
var TicketTypeNames = []string{TicketTypeGeneral, TicketTypeFanFest, TicketTypeVIP}

// IsValidTicketType reports whether name is one of the recognized ticket types.
func IsValidTicketType(name string) bool {
	for _, n := range TicketTypeNames {
		if n == name {
			return true
		}
	}
	return false
}

// Reservation lifecycle statuses.
const (
	ReservationPending   = "pending"
	ReservationFinalized = "finalized"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Event represents an event in the catalog
type Event struct {
	ID          int64           `json:"id" db:"id"`
	OwnerID     int64           `json:"owner_id" db:"owner_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	OrganizedBy string          `json:"organized_by" db:"organized_by"`
	EventDate   time.Time       `json:"event_date" db:"event_date"`
	EventTime   string          `json:"event_time" db:"event_time"`
	Location    string          `json:"location" db:"location"`
	Image       string          `json:"image" db:"image"`
	TicketPrice decimal.Decimal `json:"ticket_price" db:"ticket_price"`
	Likes       int             `json:"likes" db:"likes"`
	Approved    bool            `json:"approved" db:"approved"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	// Filled separately, not scanned from the events row.
	TicketTypes []TicketType `json:"ticket_types,omitempty"`
	SalePhases  []SalePhase  `json:"sale_phases,omitempty"`
}

// TicketType represents one inventory tier of an event. QuantityAvailable and
// QuantitySold are mutated only through the conditional decrement in the
// inventory repository.
type TicketType struct {
	ID                int64           `json:"id" db:"id"`
	EventID           int64           `json:"event_id" db:"event_id"`
	Name              string          `json:"name" db:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	QuantityAvailable int             `json:"quantity_available" db:"quantity_available"`
	QuantitySold      int             `json:"quantity_sold" db:"quantity_sold"`
}

// SalePhase represents a scheduled discount window for an event
type SalePhase struct {
	ID              int64     `json:"id" db:"id"`
	EventID         int64     `json:"event_id" db:"event_id"`
	PhaseName       string    `json:"phase_name" db:"phase_name"`
	StartDate       time.Time `json:"start_date" db:"start_date"`
	EndDate         time.Time `json:"end_date" db:"end_date"`
	DiscountPercent int       `json:"discount_percent" db:"discount_percent"`
}

// PendingReservation represents a purchase intent recorded before payment
// confirmation. The transaction id is the idempotency key for the whole
// confirmation flow. A pending reservation holds no inventory.
type PendingReservation struct {
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	BuyerID       int64           `json:"buyer_id" db:"buyer_id"`
	EventID       int64           `json:"event_id" db:"event_id"`
	TicketType    string          `json:"ticket_type" db:"ticket_type"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Status        string          `json:"status" db:"status"`
	PaymentRef    *string         `json:"payment_ref" db:"payment_ref"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	FinalizedAt   *time.Time      `json:"finalized_at" db:"finalized_at"`
}

// Ticket represents one purchased unit. Immutable once created; many tickets
// reference one reservation via TransactionID, disambiguated by UnitIndex.
type Ticket struct {
	ID            string          `json:"id" db:"id"`
	BuyerID       int64           `json:"buyer_id" db:"buyer_id"`
	EventID       int64           `json:"event_id" db:"event_id"`
	TransactionID string          `json:"transaction_id" db:"transaction_id"`
	UnitIndex     int             `json:"unit_index" db:"unit_index"`
	TicketType    string          `json:"ticket_type" db:"ticket_type"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	BuyerName     string          `json:"buyer_name" db:"buyer_name"`
	BuyerEmail    string          `json:"buyer_email" db:"buyer_email"`
	EventName     string          `json:"event_name" db:"event_name"`
	QRPayload     string          `json:"qr_payload" db:"qr_payload"`
	IssuedAt      time.Time       `json:"issued_at" db:"issued_at"`
}
