package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ovation/internal/errors"
	"ovation/internal/external"
	"ovation/internal/locks"
	"ovation/internal/models"
)

// In-memory fakes backing the coordinator tests. The fake ledger mirrors the
// Postgres repository's contract: CommitConfirmation is all-or-nothing, and a
// rejected decrement leaves the reservation pending with no tickets written.

type fakeCatalog struct {
	mu     sync.Mutex
	events map[int64]*models.Event
}

func (f *fakeCatalog) Create(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	event.ID = int64(len(f.events) + 1)
	f.events[event.ID] = event
	return nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[id], nil
}

func (f *fakeCatalog) List(_ context.Context, _ string, _, _ int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeCatalog) ListSalePhases(_ context.Context, eventID int64) ([]models.SalePhase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.events[eventID]; ok {
		return e.SalePhases, nil
	}
	return nil, nil
}

type fakeInventory struct {
	mu    sync.Mutex
	types map[string]*models.TicketType
}

func invKey(eventID int64, name string) string {
	return fmt.Sprintf("%d/%s", eventID, name)
}

func (f *fakeInventory) GetTicketType(_ context.Context, eventID int64, name string) (*models.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[invKey(eventID, name)]
	if !ok {
		return nil, nil
	}
	cp := *tt
	return &cp, nil
}

func (f *fakeInventory) ListByEvent(_ context.Context, eventID int64) ([]models.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TicketType
	for _, tt := range f.types {
		if tt.EventID == eventID {
			out = append(out, *tt)
		}
	}
	return out, nil
}

func (f *fakeInventory) ConditionalDecrement(_ context.Context, eventID int64, name string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[invKey(eventID, name)]
	if !ok || tt.QuantityAvailable < amount {
		return false, nil
	}
	tt.QuantityAvailable -= amount
	tt.QuantitySold += amount
	return true, nil
}

func (f *fakeInventory) available(eventID int64, name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[invKey(eventID, name)].QuantityAvailable
}

type fakeTickets struct {
	mu      sync.Mutex
	tickets []models.Ticket
}

func (f *fakeTickets) Insert(_ context.Context, t *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(*t)
}

func (f *fakeTickets) insertLocked(t models.Ticket) error {
	for _, existing := range f.tickets {
		if existing.TransactionID == t.TransactionID && existing.UnitIndex == t.UnitIndex {
			return fmt.Errorf("duplicate ticket for transaction %s unit %d", t.TransactionID, t.UnitIndex)
		}
	}
	f.tickets = append(f.tickets, t)
	return nil
}

func (f *fakeTickets) ListByTransactionID(_ context.Context, transactionID string) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ticket
	for _, t := range f.tickets {
		if t.TransactionID == transactionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTickets) ListByBuyer(_ context.Context, buyerID int64) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ticket
	for _, t := range f.tickets {
		if t.BuyerID == buyerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTickets) ListByEvent(_ context.Context, eventID int64) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ticket
	for _, t := range f.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeLedger struct {
	mu           sync.Mutex
	reservations map[string]*models.PendingReservation
	inventory    *fakeInventory
	tickets      *fakeTickets
}

func (f *fakeLedger) Create(_ context.Context, res *models.PendingReservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.CreatedAt = time.Now()
	cp := *res
	f.reservations[res.TransactionID] = &cp
	return nil
}

func (f *fakeLedger) GetByTransactionID(_ context.Context, transactionID string) (*models.PendingReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (f *fakeLedger) CommitConfirmation(ctx context.Context, res *models.PendingReservation, tickets []models.Ticket, decrement bool, paymentRef string) error {
	if decrement {
		applied, err := f.inventory.ConditionalDecrement(ctx, res.EventID, res.TicketType, res.Quantity)
		if err != nil {
			return err
		}
		if !applied {
			return apperrors.ResourceExhausted("not enough tickets available")
		}
	}

	f.tickets.mu.Lock()
	for _, t := range tickets {
		if err := f.tickets.insertLocked(t); err != nil {
			f.tickets.mu.Unlock()
			return err
		}
	}
	f.tickets.mu.Unlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.reservations[res.TransactionID]
	now := time.Now()
	stored.Status = models.ReservationFinalized
	stored.PaymentRef = &paymentRef
	stored.FinalizedAt = &now
	return nil
}

func (f *fakeLedger) DeleteStale(_ context.Context, before time.Time) ([]models.PendingReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed []models.PendingReservation
	for id, res := range f.reservations {
		if res.Status == models.ReservationPending && res.CreatedAt.Before(before) {
			removed = append(removed, *res)
			delete(f.reservations, id)
		}
	}
	return removed, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakePublisher) count(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fixture struct {
	catalog   *fakeCatalog
	inventory *fakeInventory
	tickets   *fakeTickets
	ledger    *fakeLedger
	publisher *fakePublisher
	svc       *ReservationService
}

func newFixture(t *testing.T, available int) *fixture {
	t.Helper()

	catalog := &fakeCatalog{events: map[int64]*models.Event{
		1: {
			ID:       1,
			OwnerID:  10,
			Title:    "Summer Sound Festival",
			Approved: true,
		},
	}}
	inventory := &fakeInventory{types: map[string]*models.TicketType{
		invKey(1, models.TicketTypeGeneral): {
			ID:                1,
			EventID:           1,
			Name:              models.TicketTypeGeneral,
			UnitPrice:         decimal.NewFromInt(50),
			QuantityAvailable: available,
		},
	}}
	tickets := &fakeTickets{}
	ledger := &fakeLedger{
		reservations: make(map[string]*models.PendingReservation),
		inventory:    inventory,
		tickets:      tickets,
	}
	publisher := &fakePublisher{}

	payment := external.NewPaymentClient(external.PaymentConfig{
		BaseURL:    "https://gateway.test",
		MerchantID: "m-1",
		Password:   "secret",
	})

	svc := NewReservationService(ledger, tickets, inventory, catalog, locks.NewKeyedMutex(),
		NewIssuer("test-secret"), publisher, payment, "USD")

	return &fixture{
		catalog:   catalog,
		inventory: inventory,
		tickets:   tickets,
		ledger:    ledger,
		publisher: publisher,
		svc:       svc,
	}
}

func (fx *fixture) initiate(t *testing.T, buyerID int64, quantity int) string {
	t.Helper()
	resp, err := fx.svc.Initiate(context.Background(), buyerID, &models.InitiateReservationRequest{
		EventID:    1,
		TicketType: models.TicketTypeGeneral,
		Quantity:   quantity,
	})
	require.NoError(t, err)
	return resp.TransactionID
}

func TestInitiateValidation(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	_, err := fx.svc.Initiate(ctx, 7, &models.InitiateReservationRequest{
		EventID: 1, TicketType: models.TicketTypeGeneral, Quantity: 0,
	})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = fx.svc.Initiate(ctx, 7, &models.InitiateReservationRequest{
		EventID: 1, TicketType: "Balcony", Quantity: 1,
	})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = fx.svc.Initiate(ctx, 7, &models.InitiateReservationRequest{
		EventID: 42, TicketType: models.TicketTypeGeneral, Quantity: 1,
	})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = fx.svc.Initiate(ctx, 7, &models.InitiateReservationRequest{
		EventID: 1, TicketType: models.TicketTypeGeneral, Quantity: 11,
	})
	assert.Equal(t, apperrors.CodeResourceExhausted, apperrors.CodeOf(err))

	// Validation failures never touch inventory.
	assert.Equal(t, 10, fx.inventory.available(1, models.TicketTypeGeneral))
}

func TestInitiateHoldsNoInventory(t *testing.T) {
	fx := newFixture(t, 10)

	txnID := fx.initiate(t, 7, 4)

	assert.NotEmpty(t, txnID)
	assert.Equal(t, 10, fx.inventory.available(1, models.TicketTypeGeneral))

	res, err := fx.ledger.GetByTransactionID(context.Background(), txnID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, fx.publisher.count(models.EventReservationCreated))
}

func TestConfirmIssuesTickets(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	txnID := fx.initiate(t, 7, 3)

	tickets, err := fx.svc.Confirm(ctx, 7, txnID, "pay-123")
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	for i, ticket := range tickets {
		assert.Equal(t, i, ticket.UnitIndex)
		assert.Equal(t, txnID, ticket.TransactionID)
		assert.NotEmpty(t, ticket.QRPayload)
		assert.True(t, ticket.UnitPrice.Equal(decimal.NewFromInt(50)))
	}

	// Every payload is unique even within one purchase.
	payloads := map[string]bool{}
	for _, ticket := range tickets {
		payloads[ticket.QRPayload] = true
	}
	assert.Len(t, payloads, 3)

	assert.Equal(t, 7, fx.inventory.available(1, models.TicketTypeGeneral))

	res, err := fx.ledger.GetByTransactionID(ctx, txnID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationFinalized, res.Status)
	require.NotNil(t, res.PaymentRef)
	assert.Equal(t, "pay-123", *res.PaymentRef)
}

func TestConfirmReplayReturnsSameTickets(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	txnID := fx.initiate(t, 7, 2)

	first, err := fx.svc.Confirm(ctx, 7, txnID, "pay-1")
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := fx.svc.Confirm(ctx, 7, txnID, "pay-1")
	require.NoError(t, err)
	require.Len(t, second, 2)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].QRPayload, second[i].QRPayload)
	}

	// Inventory committed exactly once.
	assert.Equal(t, 8, fx.inventory.available(1, models.TicketTypeGeneral))
}

func TestConfirmTopsUpPartialIssuance(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	txnID := fx.initiate(t, 7, 3)

	// Simulate an earlier crash after inventory was committed and one ticket
	// written: reservation finalized, units 1 and 2 missing.
	applied, err := fx.inventory.ConditionalDecrement(ctx, 1, models.TicketTypeGeneral, 3)
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, fx.tickets.Insert(ctx, &models.Ticket{
		ID:            uuid.New().String(),
		BuyerID:       7,
		EventID:       1,
		TransactionID: txnID,
		UnitIndex:     0,
		TicketType:    models.TicketTypeGeneral,
		UnitPrice:     decimal.NewFromInt(50),
		QRPayload:     "existing-payload",
		IssuedAt:      time.Now(),
	}))
	fx.ledger.mu.Lock()
	fx.ledger.reservations[txnID].Status = models.ReservationFinalized
	fx.ledger.mu.Unlock()

	tickets, err := fx.svc.Confirm(ctx, 7, txnID, "pay-1")
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	assert.Equal(t, "existing-payload", tickets[0].QRPayload)
	assert.Equal(t, 1, tickets[1].UnitIndex)
	assert.Equal(t, 2, tickets[2].UnitIndex)

	// The top-up must not decrement again.
	assert.Equal(t, 7, fx.inventory.available(1, models.TicketTypeGeneral))
}

func TestConfirmRejectsWrongBuyer(t *testing.T) {
	fx := newFixture(t, 10)

	txnID := fx.initiate(t, 7, 1)

	_, err := fx.svc.Confirm(context.Background(), 8, txnID, "pay-1")
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))
	assert.Equal(t, 10, fx.inventory.available(1, models.TicketTypeGeneral))
}

func TestConfirmUnknownTransaction(t *testing.T) {
	fx := newFixture(t, 10)

	_, err := fx.svc.Confirm(context.Background(), 7, uuid.New().String(), "pay-1")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestConfirmSoldOut(t *testing.T) {
	fx := newFixture(t, 4)
	ctx := context.Background()

	// Both intents pass the advisory check against 4 available.
	first := fx.initiate(t, 7, 3)
	second := fx.initiate(t, 8, 3)

	_, err := fx.svc.Confirm(ctx, 7, first, "pay-1")
	require.NoError(t, err)

	_, err = fx.svc.Confirm(ctx, 8, second, "pay-2")
	assert.Equal(t, apperrors.CodeResourceExhausted, apperrors.CodeOf(err))

	// The losing reservation stays pending and no partial decrement happened.
	res, err := fx.ledger.GetByTransactionID(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, 1, fx.inventory.available(1, models.TicketTypeGeneral))

	all, err := fx.tickets.ListByTransactionID(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1, fx.publisher.count(models.EventInventoryExhausted))
}

func TestConcurrentConfirmSameTransaction(t *testing.T) {
	fx := newFixture(t, 100)
	ctx := context.Background()

	txnID := fx.initiate(t, 7, 5)

	const workers = 16
	var wg sync.WaitGroup
	results := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.Confirm(ctx, 7, txnID, "pay-1")
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.CodeOf(err) == apperrors.CodeConflict:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// At least one confirmation wins; losers see conflict, and retries after
	// the winner replay without issuing more tickets.
	assert.GreaterOrEqual(t, succeeded, 1)
	assert.Equal(t, workers, succeeded+conflicted)

	tickets, err := fx.tickets.ListByTransactionID(ctx, txnID)
	require.NoError(t, err)
	assert.Len(t, tickets, 5)
	assert.Equal(t, 95, fx.inventory.available(1, models.TicketTypeGeneral))
}

func TestConcurrentConfirmDistinctTransactionsNeverOversell(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	// 8 buyers racing for 10 tickets in pairs of 3: at most 3 can win.
	const buyers = 8
	txns := make([]string, buyers)
	for i := 0; i < buyers; i++ {
		txns[i] = fx.initiate(t, int64(100+i), 3)
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.Confirm(ctx, int64(100+i), txns[i], "pay")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range results {
		if err == nil {
			won++
		} else {
			assert.Equal(t, apperrors.CodeResourceExhausted, apperrors.CodeOf(err))
		}
	}

	assert.Equal(t, 3, won)
	assert.Equal(t, 1, fx.inventory.available(1, models.TicketTypeGeneral))

	fx.tickets.mu.Lock()
	total := len(fx.tickets.tickets)
	fx.tickets.mu.Unlock()
	assert.Equal(t, 9, total)
}

func TestConfirmFromGatewaySkipsBuyerCheck(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	txnID := fx.initiate(t, 7, 2)

	tickets, err := fx.svc.ConfirmFromGateway(ctx, txnID, "pay-hook")
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, int64(7), tickets[0].BuyerID)
}

func TestBookDirect(t *testing.T) {
	fx := newFixture(t, 1)
	ctx := context.Background()

	ticket, err := fx.svc.BookDirect(ctx, 7, &models.BookDirectRequest{
		EventID:    1,
		TicketType: models.TicketTypeGeneral,
		BuyerName:  "Bob Buyer",
		BuyerEmail: "bob@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.UnitIndex)
	assert.Equal(t, "Bob Buyer", ticket.BuyerName)
	assert.Equal(t, 0, fx.inventory.available(1, models.TicketTypeGeneral))

	_, err = fx.svc.BookDirect(ctx, 8, &models.BookDirectRequest{
		EventID:    1,
		TicketType: models.TicketTypeGeneral,
		BuyerName:  "Late Larry",
		BuyerEmail: "larry@example.com",
	})
	assert.Equal(t, apperrors.CodeResourceExhausted, apperrors.CodeOf(err))
}

func TestReaperRemovesOnlyStalePending(t *testing.T) {
	fx := newFixture(t, 10)
	ctx := context.Background()

	stale := fx.initiate(t, 7, 1)
	confirmed := fx.initiate(t, 7, 1)

	_, err := fx.svc.Confirm(ctx, 7, confirmed, "pay-1")
	require.NoError(t, err)

	fx.ledger.mu.Lock()
	fx.ledger.reservations[stale].CreatedAt = time.Now().Add(-2 * time.Hour)
	fx.ledger.reservations[confirmed].CreatedAt = time.Now().Add(-2 * time.Hour)
	fx.ledger.mu.Unlock()

	removed, err := fx.ledger.DeleteStale(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, stale, removed[0].TransactionID)

	// Finalized reservations survive as the audit trail.
	res, err := fx.ledger.GetByTransactionID(ctx, confirmed)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, models.ReservationFinalized, res.Status)
}
