// Package pricing is the single source of truth for ticket prices. Both the
// reservation flow and analytics go through it; nothing else in the codebase
// computes a discount.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"ovation/internal/errors"
	"ovation/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Policy resolves the base unit price for a ticket type of one event.
type Policy interface {
	UnitPrice(ticketType string) (decimal.Decimal, error)
}

// FlatPolicy prices every ticket type at the event's single ticket price.
// Events created before tiered inventory existed still use this shape.
type FlatPolicy struct {
	Price decimal.Decimal
}

func (p FlatPolicy) UnitPrice(ticketType string) (decimal.Decimal, error) {
	if !models.IsValidTicketType(ticketType) {
		return decimal.Zero, errors.InvalidArgument("unrecognized ticket type: " + ticketType)
	}
	return p.Price, nil
}

// TieredPolicy prices each ticket type from its inventory tier.
type TieredPolicy struct {
	prices map[string]decimal.Decimal
}

func (p TieredPolicy) UnitPrice(ticketType string) (decimal.Decimal, error) {
	price, ok := p.prices[ticketType]
	if !ok {
		return decimal.Zero, errors.NotFound("ticket type not offered: " + ticketType)
	}
	return price, nil
}

// Resolve picks the pricing policy for an event: tiered when the event carries
// ticket types, flat otherwise.
func Resolve(event *models.Event, ticketTypes []models.TicketType) Policy {
	if len(ticketTypes) == 0 {
		return FlatPolicy{Price: event.TicketPrice}
	}
	prices := make(map[string]decimal.Decimal, len(ticketTypes))
	for _, tt := range ticketTypes {
		prices[tt.Name] = tt.UnitPrice
	}
	return TieredPolicy{prices: prices}
}

// EffectivePrice applies the sale phase containing asOf to the base price.
// Phases are checked in order; the first containing phase wins. With no
// containing phase the base price is returned unchanged. The result is
// rounded to two decimal places.
func EffectivePrice(base decimal.Decimal, phases []models.SalePhase, asOf time.Time) decimal.Decimal {
	for _, phase := range phases {
		if !asOf.Before(phase.StartDate) && !asOf.After(phase.EndDate) {
			discount := decimal.NewFromInt(int64(phase.DiscountPercent))
			return base.Mul(hundred.Sub(discount)).Div(hundred).Round(2)
		}
	}
	return base
}
