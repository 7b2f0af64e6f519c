package service

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ovation/internal/models"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret")
	event := &models.Event{ID: 42, Title: "Summer Sound Festival"}
	issuedAt := time.Now().Truncate(time.Second)

	ticket, err := issuer.Issue("txn-1", 2,
		BuyerInfo{ID: 7, Name: "Bob Buyer", Email: "bob@example.com"},
		event, models.TicketTypeVIP, decimal.NewFromInt(300), issuedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, "Summer Sound Festival", ticket.EventName)
	assert.Equal(t, 2, ticket.UnitIndex)

	claims, err := issuer.Verify(ticket.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.BuyerID)
	assert.Equal(t, int64(42), claims.EventID)
	assert.Equal(t, "txn-1", claims.TransactionID)
	assert.Equal(t, 2, claims.UnitIndex)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	issuer := NewIssuer("test-secret")
	event := &models.Event{ID: 1, Title: "Show"}

	ticket, err := issuer.Issue("txn-1", 0, BuyerInfo{ID: 7}, event,
		models.TicketTypeGeneral, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)

	parts := strings.Split(ticket.QRPayload, ".")
	require.Len(t, parts, 2)

	// Body swapped, signature kept.
	other, err := issuer.Issue("txn-2", 0, BuyerInfo{ID: 8}, event,
		models.TicketTypeGeneral, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)
	otherParts := strings.Split(other.QRPayload, ".")

	_, err = issuer.Verify(otherParts[0] + "." + parts[1])
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	event := &models.Event{ID: 1, Title: "Show"}

	ticket, err := NewIssuer("secret-a").Issue("txn-1", 0, BuyerInfo{ID: 7}, event,
		models.TicketTypeGeneral, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)

	_, err = NewIssuer("secret-b").Verify(ticket.QRPayload)
	assert.Error(t, err)
}

func TestVerifyRejectsMalformedPayload(t *testing.T) {
	issuer := NewIssuer("test-secret")

	for _, payload := range []string{"", "nodot", "a.b.c", "!!!.???"} {
		_, err := issuer.Verify(payload)
		assert.Error(t, err, "payload %q", payload)
	}
}
