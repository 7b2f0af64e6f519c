package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovation/internal/models"
)

// The full purchase path against a seeded server: browse, initiate, confirm,
// replay the confirmation, verify a QR payload.
func TestReservationFlow(t *testing.T) {
	client := NewTestClient()
	client.SkipUnlessAvailable(t)

	events := client.ListEvents(t)
	require.NotEmpty(t, events, "seeded server expected at least one event")

	eventID := events[0].ID
	detail := client.GetEvent(t, eventID)
	require.NotEmpty(t, detail.TicketTypes)

	tier := detail.TicketTypes[0]
	require.Greater(t, tier.QuantityAvailable, 2)

	initResp := client.InitiateReservation(t, eventID, tier.Name, 2)
	assert.NotEmpty(t, initResp.TransactionID)
	assert.NotEmpty(t, initResp.PaymentForm.Token)

	// Initiation holds nothing.
	afterInit := client.GetEvent(t, eventID)
	assert.Equal(t, tier.QuantityAvailable, afterInit.TicketTypes[0].QuantityAvailable)

	confirmResp := client.ConfirmReservation(t, initResp.TransactionID, "integration-pay-ref")
	require.Len(t, confirmResp.Tickets, 2)
	assert.Equal(t, 0, confirmResp.Tickets[0].UnitIndex)
	assert.Equal(t, 1, confirmResp.Tickets[1].UnitIndex)

	afterConfirm := client.GetEvent(t, eventID)
	assert.Equal(t, tier.QuantityAvailable-2, afterConfirm.TicketTypes[0].QuantityAvailable)

	// A duplicate confirmation replays the same tickets without a second
	// decrement.
	replay := client.ConfirmReservation(t, initResp.TransactionID, "integration-pay-ref")
	require.Len(t, replay.Tickets, 2)
	assert.Equal(t, confirmResp.Tickets[0].ID, replay.Tickets[0].ID)

	afterReplay := client.GetEvent(t, eventID)
	assert.Equal(t, afterConfirm.TicketTypes[0].QuantityAvailable, afterReplay.TicketTypes[0].QuantityAvailable)

	tickets := client.ListMyTickets(t)
	require.NotEmpty(t, tickets)

	var issued *models.TicketView
	for i := range tickets {
		if tickets[i].Ticket.TransactionID == initResp.TransactionID {
			issued = &tickets[i]
			break
		}
	}
	require.NotNil(t, issued, "confirmed ticket missing from buyer's list")

	verify := client.VerifyTicket(t, issued.Ticket.QRPayload)
	assert.True(t, verify.Valid)
	assert.Equal(t, initResp.TransactionID, verify.TransactionID)
}
