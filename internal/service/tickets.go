package service

import (
	"context"
	"time"

	"ovation/internal/errors"
	"ovation/internal/models"
	"ovation/internal/pricing"
)

// TicketService reads issued tickets and verifies scanned QR payloads.
type TicketService struct {
	tickets TicketStore
	catalog EventCatalog
	issuer  *Issuer
}

func NewTicketService(tickets TicketStore, catalog EventCatalog, issuer *Issuer) *TicketService {
	return &TicketService{
		tickets: tickets,
		catalog: catalog,
		issuer:  issuer,
	}
}

// ListByBuyer returns the buyer's tickets, each with the price its tier
// reports today. Sale phases are loaded once per distinct event.
func (s *TicketService) ListByBuyer(ctx context.Context, buyerID int64) ([]models.TicketView, error) {
	tickets, err := s.tickets.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, errors.Internal("failed to load tickets", err)
	}

	phasesByEvent := make(map[int64][]models.SalePhase)
	now := time.Now()

	views := make([]models.TicketView, 0, len(tickets))
	for _, t := range tickets {
		phases, ok := phasesByEvent[t.EventID]
		if !ok {
			phases, err = s.catalog.ListSalePhases(ctx, t.EventID)
			if err != nil {
				return nil, errors.Internal("failed to load sale phases", err)
			}
			phasesByEvent[t.EventID] = phases
		}
		views = append(views, models.TicketView{
			Ticket:         t,
			EffectivePrice: pricing.EffectivePrice(t.UnitPrice, phases, now),
		})
	}
	return views, nil
}

// Verify checks a scanned QR payload and returns its claims. A bad signature
// or malformed payload is an invalid-argument error, not an internal one.
func (s *TicketService) Verify(ctx context.Context, payload string) (*models.VerifyTicketResponse, error) {
	claims, err := s.issuer.Verify(payload)
	if err != nil {
		return nil, errors.InvalidArgument("invalid QR payload: " + err.Error())
	}

	return &models.VerifyTicketResponse{
		Valid:         true,
		BuyerID:       claims.BuyerID,
		EventID:       claims.EventID,
		TransactionID: claims.TransactionID,
		UnitIndex:     claims.UnitIndex,
		IssuedAt:      time.Unix(claims.IssuedAt, 0),
	}, nil
}
