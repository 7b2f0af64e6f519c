package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ovation/internal/errors"
	"ovation/internal/models"
)

func TestListByBuyerAppliesCurrentPhase(t *testing.T) {
	now := time.Now()
	catalog := &fakeCatalog{events: map[int64]*models.Event{
		1: {
			ID:       1,
			Approved: true,
			SalePhases: []models.SalePhase{
				{EventID: 1, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1), DiscountPercent: 25},
			},
		},
	}}
	tickets := &fakeTickets{}
	svc := NewTicketService(tickets, catalog, NewIssuer("test-secret"))
	ctx := context.Background()

	require.NoError(t, tickets.Insert(ctx, &models.Ticket{
		ID: "t1", BuyerID: 7, EventID: 1, TransactionID: "txn-1",
		TicketType: models.TicketTypeGeneral, UnitPrice: decimal.NewFromInt(100),
		IssuedAt: now,
	}))

	views, err := svc.ListByBuyer(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].EffectivePrice.Equal(decimal.NewFromInt(75)))

	none, err := svc.ListByBuyer(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVerifyTicketService(t *testing.T) {
	issuer := NewIssuer("test-secret")
	svc := NewTicketService(&fakeTickets{}, &fakeCatalog{events: map[int64]*models.Event{}}, issuer)
	ctx := context.Background()

	ticket, err := issuer.Issue("txn-1", 0, BuyerInfo{ID: 7}, &models.Event{ID: 1, Title: "Show"},
		models.TicketTypeGeneral, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)

	resp, err := svc.Verify(ctx, ticket.QRPayload)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, int64(7), resp.BuyerID)
	assert.Equal(t, "txn-1", resp.TransactionID)

	_, err = svc.Verify(ctx, "garbage")
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}
