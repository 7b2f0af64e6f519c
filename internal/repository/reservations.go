package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ovation/internal/database"
	"ovation/internal/errors"
	"ovation/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *models.PendingReservation) error {
	query := `
		INSERT INTO reservations (transaction_id, buyer_id, event_id, ticket_type, quantity, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		res.TransactionID,
		res.BuyerID,
		res.EventID,
		res.TicketType,
		res.Quantity,
		res.Amount,
		res.Status,
	).Scan(&res.CreatedAt)
}

func (r *ReservationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PendingReservation, error) {
	res := &models.PendingReservation{}
	query := `
		SELECT transaction_id, buyer_id, event_id, ticket_type, quantity, amount,
		       status, payment_ref, created_at, finalized_at
		FROM reservations
		WHERE transaction_id = $1`

	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&res.TransactionID,
		&res.BuyerID,
		&res.EventID,
		&res.TicketType,
		&res.Quantity,
		&res.Amount,
		&res.Status,
		&res.PaymentRef,
		&res.CreatedAt,
		&res.FinalizedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return res, err
}

// CommitConfirmation persists the outcome of a confirmed reservation in one
// database transaction: the conditional inventory decrement (when decrement
// is set), the ticket rows, and the finalized marker. Either everything
// lands or nothing does; a failed stock condition surfaces as
// resource_exhausted with the reservation left pending.
func (r *ReservationRepository) CommitConfirmation(ctx context.Context, res *models.PendingReservation, tickets []models.Ticket, decrement bool, paymentRef string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if decrement {
		result, err := tx.ExecContext(ctx, conditionalDecrementQuery, res.EventID, res.TicketType, res.Quantity)
		if err != nil {
			return fmt.Errorf("conditional decrement failed: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errors.ResourceExhausted("insufficient inventory for ticket type " + res.TicketType)
		}
	}

	insertQuery := `
		INSERT INTO tickets (id, buyer_id, event_id, transaction_id, unit_index, ticket_type,
		                     unit_price, buyer_name, buyer_email, event_name, qr_payload, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, t := range tickets {
		_, err := tx.ExecContext(ctx, insertQuery,
			t.ID, t.BuyerID, t.EventID, t.TransactionID, t.UnitIndex, t.TicketType,
			t.UnitPrice, t.BuyerName, t.BuyerEmail, t.EventName, t.QRPayload, t.IssuedAt)
		if err != nil {
			return fmt.Errorf("failed to insert ticket %d: %w", t.UnitIndex, err)
		}
	}

	finalizeQuery := `
		UPDATE reservations
		SET status = $2, payment_ref = $3, finalized_at = NOW()
		WHERE transaction_id = $1`

	if _, err := tx.ExecContext(ctx, finalizeQuery, res.TransactionID, models.ReservationFinalized, paymentRef); err != nil {
		return fmt.Errorf("failed to finalize reservation: %w", err)
	}

	return tx.Commit()
}

// DeleteStale removes pending reservations created before the cutoff and
// returns them so the reaper can publish expiration events. Finalized
// reservations are never touched.
func (r *ReservationRepository) DeleteStale(ctx context.Context, before time.Time) ([]models.PendingReservation, error) {
	query := `
		DELETE FROM reservations
		WHERE status = $1 AND created_at < $2
		RETURNING transaction_id, event_id`

	rows, err := r.db.QueryContext(ctx, query, models.ReservationPending, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []models.PendingReservation
	for rows.Next() {
		var res models.PendingReservation
		if err := rows.Scan(&res.TransactionID, &res.EventID); err != nil {
			return nil, err
		}
		expired = append(expired, res)
	}

	return expired, rows.Err()
}
