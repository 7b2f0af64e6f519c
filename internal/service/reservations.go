package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ovation/internal/errors"
	"ovation/internal/external"
	"ovation/internal/locks"
	"ovation/internal/logger"
	"ovation/internal/models"
	"ovation/internal/monitoring"
)

// ReservationService coordinates the reservation lifecycle: recording
// purchase intents, committing payment confirmations against inventory, and
// issuing tickets. It owns the idempotency and concurrency guarantees of the
// confirmation flow.
type ReservationService struct {
	ledger    ReservationLedger
	tickets   TicketStore
	inventory InventoryStore
	catalog   EventCatalog
	locker    locks.Locker
	issuer    *Issuer
	publisher Publisher
	payment   *external.PaymentClient
	currency  string
}

func NewReservationService(ledger ReservationLedger, tickets TicketStore, inventory InventoryStore, catalog EventCatalog, locker locks.Locker, issuer *Issuer, publisher Publisher, payment *external.PaymentClient, currency string) *ReservationService {
	return &ReservationService{
		ledger:    ledger,
		tickets:   tickets,
		inventory: inventory,
		catalog:   catalog,
		locker:    locker,
		issuer:    issuer,
		publisher: publisher,
		payment:   payment,
		currency:  currency,
	}
}

// Initiate records a purchase intent and returns the data the buyer forwards
// to the payment gateway. No inventory is held: the availability check here
// is advisory, the binding check happens at confirmation.
func (s *ReservationService) Initiate(ctx context.Context, buyerID int64, req *models.InitiateReservationRequest) (*models.InitiateReservationResponse, error) {
	if req.Quantity <= 0 {
		return nil, errors.InvalidArgument("quantity must be positive")
	}
	if !models.IsValidTicketType(req.TicketType) {
		return nil, errors.InvalidArgument("unrecognized ticket type: " + req.TicketType)
	}

	event, err := s.catalog.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, errors.Internal("failed to load event", err)
	}
	if event == nil || !event.Approved {
		return nil, errors.NotFound("event not found")
	}

	ticketType, err := s.inventory.GetTicketType(ctx, req.EventID, req.TicketType)
	if err != nil {
		return nil, errors.Internal("failed to load ticket type", err)
	}
	if ticketType == nil {
		return nil, errors.NotFound("ticket type not offered for this event: " + req.TicketType)
	}
	if ticketType.QuantityAvailable < req.Quantity {
		return nil, errors.ResourceExhausted("not enough tickets available")
	}

	reservation := &models.PendingReservation{
		TransactionID: uuid.New().String(),
		BuyerID:       buyerID,
		EventID:       req.EventID,
		TicketType:    req.TicketType,
		Quantity:      req.Quantity,
		Amount:        ticketType.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Status:        models.ReservationPending,
	}

	if err := s.ledger.Create(ctx, reservation); err != nil {
		return nil, errors.Internal("failed to record reservation", err)
	}

	monitoring.ReservationsInitiated.WithLabelValues(req.TicketType).Inc()

	if err := s.publisher.Publish(models.EventReservationCreated, models.ReservationCreatedEvent{
		TransactionID: reservation.TransactionID,
		BuyerID:       buyerID,
		EventID:       req.EventID,
		TicketType:    req.TicketType,
		Quantity:      req.Quantity,
		Amount:        reservation.Amount,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish reservation created event",
			"error", err,
			"transaction_id", reservation.TransactionID,
			"event_type", models.EventReservationCreated)
	}

	return &models.InitiateReservationResponse{
		TransactionID: reservation.TransactionID,
		Amount:        reservation.Amount,
		PaymentForm:   s.payment.BuildPaymentForm(reservation.TransactionID, reservation.Amount, s.currency),
	}, nil
}

// Confirm settles a reservation after the payment gateway reports success.
// It is safe to retry and safe against duplicate callbacks: for any
// transaction id, inventory is committed exactly once and exactly
// reservation.Quantity tickets are ever created.
func (s *ReservationService) Confirm(ctx context.Context, buyerID int64, transactionID, paymentRef string) ([]models.Ticket, error) {
	return s.confirm(ctx, buyerID, transactionID, paymentRef, true)
}

// ConfirmFromGateway settles a reservation on a payment webhook, which
// carries no authenticated buyer. The reservation's own buyer is trusted.
func (s *ReservationService) ConfirmFromGateway(ctx context.Context, transactionID, paymentRef string) ([]models.Ticket, error) {
	return s.confirm(ctx, 0, transactionID, paymentRef, false)
}

func (s *ReservationService) confirm(ctx context.Context, buyerID int64, transactionID, paymentRef string, enforceBuyer bool) ([]models.Ticket, error) {
	start := time.Now()
	defer func() {
		monitoring.ConfirmDuration.Observe(time.Since(start).Seconds())
	}()

	// Serialize the whole sequence against concurrent confirmations of the
	// same transaction. Confirmations of other transactions proceed in
	// parallel; the store-level conditional decrement arbitrates those.
	release, ok, err := s.locker.TryLock(ctx, "reservation:"+transactionID)
	if err != nil {
		monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeError).Inc()
		return nil, errors.Internal("failed to acquire confirmation lock", err)
	}
	if !ok {
		monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeConflict).Inc()
		return nil, errors.Conflict("confirmation already in progress for this transaction")
	}
	defer release()

	reservation, err := s.ledger.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, errors.Internal("failed to load reservation", err)
	}
	if reservation == nil {
		return nil, errors.NotFound("reservation not found")
	}
	if enforceBuyer && reservation.BuyerID != buyerID {
		return nil, errors.PermissionDenied("reservation belongs to another buyer")
	}
	buyerID = reservation.BuyerID

	existing, err := s.tickets.ListByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, errors.Internal("failed to load issued tickets", err)
	}
	if len(existing) >= reservation.Quantity {
		// Duplicate callback or client retry: return the issued set unchanged.
		monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeReplayed).Inc()
		return existing, nil
	}

	event, err := s.catalog.GetByID(ctx, reservation.EventID)
	if err != nil {
		return nil, errors.Internal("failed to load event", err)
	}
	if event == nil {
		return nil, errors.NotFound("event no longer exists")
	}

	// Issue only the unit indexes that are missing. On the first pass that
	// is all of them; after a partial failure it tops the set up without
	// touching inventory again.
	issued := make(map[int]bool, len(existing))
	for _, t := range existing {
		issued[t.UnitIndex] = true
	}

	unitPrice := reservation.Amount.Div(decimal.NewFromInt(int64(reservation.Quantity)))
	now := time.Now()

	var fresh []models.Ticket
	for unit := 0; unit < reservation.Quantity; unit++ {
		if issued[unit] {
			continue
		}
		ticket, err := s.issuer.Issue(transactionID, unit, BuyerInfo{ID: buyerID}, event, reservation.TicketType, unitPrice, now)
		if err != nil {
			monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeError).Inc()
			return nil, errors.Internal("failed to issue ticket", err)
		}
		fresh = append(fresh, ticket)
	}

	// Inventory is decremented only on the first commit for this
	// transaction; a top-up after partial issuance must not decrement again.
	decrement := len(existing) == 0 && reservation.Status == models.ReservationPending

	if err := s.ledger.CommitConfirmation(ctx, reservation, fresh, decrement, paymentRef); err != nil {
		if errors.CodeOf(err) == errors.CodeResourceExhausted {
			monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeSoldOut).Inc()
			monitoring.InventoryRejections.WithLabelValues(reservation.TicketType).Inc()
			s.publishExhausted(ctx, reservation)
			return nil, err
		}
		monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeError).Inc()
		return nil, errors.Internal("failed to commit confirmation", err)
	}

	all := append(existing, fresh...)
	sort.Slice(all, func(i, j int) bool { return all[i].UnitIndex < all[j].UnitIndex })

	monitoring.ReservationsConfirmed.WithLabelValues(monitoring.OutcomeIssued).Inc()
	monitoring.TicketsIssued.WithLabelValues(reservation.TicketType).Add(float64(len(fresh)))

	if err := s.publisher.Publish(models.EventTicketIssued, models.TicketIssuedEvent{
		TransactionID: transactionID,
		BuyerID:       buyerID,
		EventID:       reservation.EventID,
		TicketType:    reservation.TicketType,
		Quantity:      len(all),
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket issued event",
			"error", err,
			"transaction_id", transactionID,
			"event_type", models.EventTicketIssued)
	}

	return all, nil
}

// BookDirect is the single-unit path with no separate payment step: one
// conditional decrement, then one ticket, synchronously. There is no
// idempotency key here, so a duplicate submission buys a second ticket.
func (s *ReservationService) BookDirect(ctx context.Context, buyerID int64, req *models.BookDirectRequest) (*models.Ticket, error) {
	if !models.IsValidTicketType(req.TicketType) {
		return nil, errors.InvalidArgument("unrecognized ticket type: " + req.TicketType)
	}

	event, err := s.catalog.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, errors.Internal("failed to load event", err)
	}
	if event == nil || !event.Approved {
		return nil, errors.NotFound("event not found")
	}

	ticketType, err := s.inventory.GetTicketType(ctx, req.EventID, req.TicketType)
	if err != nil {
		return nil, errors.Internal("failed to load ticket type", err)
	}
	if ticketType == nil {
		return nil, errors.NotFound("ticket type not offered for this event: " + req.TicketType)
	}

	applied, err := s.inventory.ConditionalDecrement(ctx, req.EventID, req.TicketType, 1)
	if err != nil {
		return nil, errors.Internal("failed to decrement inventory", err)
	}
	if !applied {
		monitoring.InventoryRejections.WithLabelValues(req.TicketType).Inc()
		s.publishExhausted(ctx, &models.PendingReservation{
			EventID:    req.EventID,
			TicketType: req.TicketType,
			Quantity:   1,
		})
		return nil, errors.ResourceExhausted("no tickets available for this event")
	}

	buyer := BuyerInfo{ID: buyerID, Name: req.BuyerName, Email: req.BuyerEmail}
	ticket, err := s.issuer.Issue(uuid.New().String(), 0, buyer, event, req.TicketType, ticketType.UnitPrice, time.Now())
	if err != nil {
		return nil, errors.Internal("failed to issue ticket", err)
	}

	if err := s.tickets.Insert(ctx, &ticket); err != nil {
		logger.WithContext(ctx).Error("Ticket persistence failed after inventory decrement",
			"error", err,
			"transaction_id", ticket.TransactionID,
			"event_id", req.EventID)
		return nil, errors.Internal("failed to persist ticket", err)
	}

	monitoring.TicketsIssued.WithLabelValues(req.TicketType).Inc()

	if err := s.publisher.Publish(models.EventTicketIssued, models.TicketIssuedEvent{
		TransactionID: ticket.TransactionID,
		BuyerID:       buyerID,
		EventID:       req.EventID,
		TicketType:    req.TicketType,
		Quantity:      1,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket issued event",
			"error", err,
			"transaction_id", ticket.TransactionID,
			"event_type", models.EventTicketIssued)
	}

	return &ticket, nil
}

func (s *ReservationService) publishExhausted(ctx context.Context, reservation *models.PendingReservation) {
	if err := s.publisher.Publish(models.EventInventoryExhausted, models.InventoryExhaustedEvent{
		TransactionID: reservation.TransactionID,
		EventID:       reservation.EventID,
		TicketType:    reservation.TicketType,
		Requested:     reservation.Quantity,
		Timestamp:     time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish inventory exhausted event",
			"error", err,
			"event_id", reservation.EventID,
			"event_type", models.EventInventoryExhausted)
	}
}
