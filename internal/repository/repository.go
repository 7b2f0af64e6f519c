package repository

import (
	"ovation/internal/database"
)

type Repositories struct {
	Events       *EventRepository
	Inventory    *InventoryRepository
	Reservations *ReservationRepository
	Tickets      *TicketRepository
	Users        *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:       NewEventRepository(db),
		Inventory:    NewInventoryRepository(db),
		Reservations: NewReservationRepository(db),
		Tickets:      NewTicketRepository(db),
		Users:        NewUserRepository(db),
	}
}
