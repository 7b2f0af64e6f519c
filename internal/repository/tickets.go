package repository

import (
	"context"
	"fmt"

	"ovation/internal/database"
	"ovation/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, buyer_id, event_id, transaction_id, unit_index, ticket_type,
		       unit_price, buyer_name, buyer_email, event_name, qr_payload, issued_at`

func (r *TicketRepository) Insert(ctx context.Context, t *models.Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.BuyerID, t.EventID, t.TransactionID, t.UnitIndex, t.TicketType,
		t.UnitPrice, t.BuyerName, t.BuyerEmail, t.EventName, t.QRPayload, t.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) ListByTransactionID(ctx context.Context, transactionID string) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE transaction_id = $1
		ORDER BY unit_index`

	return r.queryTickets(ctx, query, transactionID)
}

func (r *TicketRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE buyer_id = $1
		ORDER BY issued_at DESC, unit_index`

	return r.queryTickets(ctx, query, buyerID)
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE event_id = $1
		ORDER BY issued_at`

	return r.queryTickets(ctx, query, eventID)
}

func (r *TicketRepository) queryTickets(ctx context.Context, query string, args ...interface{}) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		err := rows.Scan(
			&t.ID,
			&t.BuyerID,
			&t.EventID,
			&t.TransactionID,
			&t.UnitIndex,
			&t.TicketType,
			&t.UnitPrice,
			&t.BuyerName,
			&t.BuyerEmail,
			&t.EventName,
			&t.QRPayload,
			&t.IssuedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	return tickets, rows.Err()
}
