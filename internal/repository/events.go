package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ovation/internal/database"
	"ovation/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts the event together with its ticket types and sale phases in
// one transaction.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (owner_id, title, description, organized_by, event_date,
		                    event_time, location, image, ticket_price, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		event.OwnerID,
		event.Title,
		event.Description,
		event.OrganizedBy,
		event.EventDate,
		event.EventTime,
		event.Location,
		event.Image,
		event.TicketPrice,
		event.Approved,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	for i := range event.TicketTypes {
		tt := &event.TicketTypes[i]
		tt.EventID = event.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO ticket_types (event_id, name, unit_price, quantity_available, quantity_sold)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			tt.EventID, tt.Name, tt.UnitPrice, tt.QuantityAvailable, tt.QuantitySold,
		).Scan(&tt.ID)
		if err != nil {
			return fmt.Errorf("failed to insert ticket type %s: %w", tt.Name, err)
		}
	}

	for i := range event.SalePhases {
		sp := &event.SalePhases[i]
		sp.EventID = event.ID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sale_phases (event_id, phase_name, start_date, end_date, discount_percent)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			sp.EventID, sp.PhaseName, sp.StartDate, sp.EndDate, sp.DiscountPercent,
		).Scan(&sp.ID)
		if err != nil {
			return fmt.Errorf("failed to insert sale phase %s: %w", sp.PhaseName, err)
		}
	}

	return tx.Commit()
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, owner_id, title, description, organized_by, event_date, event_time,
		       location, image, ticket_price, likes, approved, created_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.OrganizedBy,
		&event.EventDate,
		&event.EventTime,
		&event.Location,
		&event.Image,
		&event.TicketPrice,
		&event.Likes,
		&event.Approved,
		&event.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

// List returns approved events, optionally filtered by a title/description
// substring. Used directly and as the fallback when search is unavailable.
func (r *EventRepository) List(ctx context.Context, query string, page, pageSize int) ([]models.Event, error) {
	var args []interface{}
	argIndex := 1

	sqlQuery := `
		SELECT id, owner_id, title, description, organized_by, event_date, event_time,
		       location, image, ticket_price, likes, approved, created_at
		FROM events
		WHERE approved = TRUE`

	if query != "" {
		sqlQuery += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+query+"%")
		argIndex++
	}

	sqlQuery += " ORDER BY event_date"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		sqlQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.OwnerID,
			&event.Title,
			&event.Description,
			&event.OrganizedBy,
			&event.EventDate,
			&event.EventTime,
			&event.Location,
			&event.Image,
			&event.TicketPrice,
			&event.Likes,
			&event.Approved,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *EventRepository) ListSalePhases(ctx context.Context, eventID int64) ([]models.SalePhase, error) {
	query := `
		SELECT id, event_id, phase_name, start_date, end_date, discount_percent
		FROM sale_phases
		WHERE event_id = $1
		ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []models.SalePhase
	for rows.Next() {
		var sp models.SalePhase
		err := rows.Scan(
			&sp.ID,
			&sp.EventID,
			&sp.PhaseName,
			&sp.StartDate,
			&sp.EndDate,
			&sp.DiscountPercent,
		)
		if err != nil {
			return nil, err
		}
		phases = append(phases, sp)
	}

	return phases, rows.Err()
}
