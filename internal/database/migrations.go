package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createEventsTable,
		createTicketTypesTable,
		createSalePhasesTable,
		createReservationsTable,
		createTicketsTable,
		createReservationStatusIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,

    CHECK (role IN ('user', 'organizer', 'admin'))
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    owner_id INTEGER NOT NULL REFERENCES users(id),
    title VARCHAR(500) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    organized_by VARCHAR(255) NOT NULL,
    event_date TIMESTAMP NOT NULL,
    event_time VARCHAR(20) NOT NULL DEFAULT '',
    location VARCHAR(500) NOT NULL DEFAULT '',
    image VARCHAR(500) NOT NULL DEFAULT '',
    ticket_price DECIMAL(10,2) NOT NULL DEFAULT 0,
    likes INTEGER NOT NULL DEFAULT 0,
    approved BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createTicketTypesTable = `
CREATE TABLE IF NOT EXISTS ticket_types (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(20) NOT NULL,
    unit_price DECIMAL(10,2) NOT NULL,
    quantity_available INTEGER NOT NULL,
    quantity_sold INTEGER NOT NULL DEFAULT 0,

    UNIQUE(event_id, name),
    CHECK (name IN ('General', 'FanFest', 'VIP')),
    CHECK (quantity_available >= 0),
    CHECK (quantity_sold >= 0)
);`

const createSalePhasesTable = `
CREATE TABLE IF NOT EXISTS sale_phases (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    phase_name VARCHAR(100) NOT NULL,
    start_date TIMESTAMP NOT NULL,
    end_date TIMESTAMP NOT NULL,
    discount_percent INTEGER NOT NULL DEFAULT 0,

    CHECK (discount_percent >= 0 AND discount_percent <= 100),
    CHECK (start_date <= end_date)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    transaction_id UUID PRIMARY KEY,
    buyer_id INTEGER NOT NULL REFERENCES users(id),
    event_id INTEGER NOT NULL REFERENCES events(id),
    ticket_type VARCHAR(20) NOT NULL,
    quantity INTEGER NOT NULL,
    amount DECIMAL(10,2) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_ref VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    finalized_at TIMESTAMP,

    CHECK (quantity > 0),
    CHECK (status IN ('pending', 'finalized'))
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id UUID PRIMARY KEY,
    buyer_id INTEGER NOT NULL REFERENCES users(id),
    event_id INTEGER NOT NULL REFERENCES events(id),
    transaction_id UUID NOT NULL,
    unit_index INTEGER NOT NULL,
    ticket_type VARCHAR(20) NOT NULL,
    unit_price DECIMAL(10,2) NOT NULL,
    buyer_name VARCHAR(255) NOT NULL DEFAULT '',
    buyer_email VARCHAR(255) NOT NULL DEFAULT '',
    event_name VARCHAR(500) NOT NULL DEFAULT '',
    qr_payload TEXT NOT NULL,
    issued_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(transaction_id, unit_index)
);`

const createReservationStatusIndex = `
CREATE INDEX IF NOT EXISTS reservations_status_created_idx
ON reservations (status, created_at);`
