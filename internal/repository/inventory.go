package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ovation/internal/database"
	"ovation/internal/models"
)

type InventoryRepository struct {
	db *database.DB
}

func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetTicketType(ctx context.Context, eventID int64, name string) (*models.TicketType, error) {
	tt := &models.TicketType{}
	query := `
		SELECT id, event_id, name, unit_price, quantity_available, quantity_sold
		FROM ticket_types
		WHERE event_id = $1 AND name = $2`

	err := r.db.QueryRowContext(ctx, query, eventID, name).Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.UnitPrice,
		&tt.QuantityAvailable,
		&tt.QuantitySold,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tt, err
}

func (r *InventoryRepository) ListByEvent(ctx context.Context, eventID int64) ([]models.TicketType, error) {
	query := `
		SELECT id, event_id, name, unit_price, quantity_available, quantity_sold
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.TicketType
	for rows.Next() {
		var tt models.TicketType
		err := rows.Scan(
			&tt.ID,
			&tt.EventID,
			&tt.Name,
			&tt.UnitPrice,
			&tt.QuantityAvailable,
			&tt.QuantitySold,
		)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}

	return types, rows.Err()
}

// ConditionalDecrement moves amount units from available to sold as a single
// atomic statement, applied only while quantity_available covers the amount.
// Returns whether the decrement applied. This is the sole mutation path for
// stock; callers never read-then-write the counters.
func (r *InventoryRepository) ConditionalDecrement(ctx context.Context, eventID int64, name string, amount int) (bool, error) {
	res, err := r.db.ExecContext(ctx, conditionalDecrementQuery, eventID, name, amount)
	if err != nil {
		return false, fmt.Errorf("conditional decrement failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

const conditionalDecrementQuery = `
	UPDATE ticket_types
	SET quantity_available = quantity_available - $3,
	    quantity_sold = quantity_sold + $3
	WHERE event_id = $1 AND name = $2 AND quantity_available >= $3`
