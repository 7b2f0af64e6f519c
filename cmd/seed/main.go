package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"ovation/internal/cache"
	"ovation/internal/config"
	"ovation/internal/database"
	"ovation/internal/logger"
	"ovation/internal/models"
	"ovation/internal/repository"
)

// Seeds a development database with users and one event per ticket tier
// layout, and warms the Redis auth cache so the first requests skip the
// database credential check.

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, skipping auth cache warmup: %v", err)
		redisClient = nil
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	users := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"Admin", "admin@ovation.dev", "admin123", "admin"},
		{"Olga Organizer", "organizer@ovation.dev", "organizer123", "organizer"},
		{"Bob Buyer", "buyer@ovation.dev", "buyer123", "user"},
	}

	var organizer *models.User
	for _, u := range users {
		hash := sha256.Sum256([]byte(u.password))
		user := &models.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: fmt.Sprintf("%x", hash),
			Role:         u.role,
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", u.email, err)
		}
		log.Printf("User ready: %s (id=%d, role=%s)", user.Email, user.ID, user.Role)

		if u.role == "organizer" {
			organizer = user
		}

		if redisClient != nil {
			if err := redisClient.SetUserAuth(ctx, user.Email, user.PasswordHash, user.ID); err != nil {
				log.Printf("Failed to warm auth cache for %s: %v", user.Email, err)
			}
		}
	}

	event := &models.Event{
		OwnerID:     organizer.ID,
		Title:       "Summer Sound Festival",
		Description: "Three stages of live music on the waterfront.",
		OrganizedBy: organizer.Name,
		EventDate:   time.Now().AddDate(0, 2, 0),
		EventTime:   "18:00",
		Location:    "Riverside Park",
		TicketPrice: decimal.NewFromInt(50),
		Approved:    true,
		TicketTypes: []models.TicketType{
			{Name: models.TicketTypeGeneral, UnitPrice: decimal.NewFromInt(50), QuantityAvailable: 5000},
			{Name: models.TicketTypeFanFest, UnitPrice: decimal.NewFromInt(120), QuantityAvailable: 800},
			{Name: models.TicketTypeVIP, UnitPrice: decimal.NewFromInt(300), QuantityAvailable: 100},
		},
		SalePhases: []models.SalePhase{
			{
				PhaseName:       "Early Bird",
				StartDate:       time.Now().AddDate(0, 0, -1),
				EndDate:         time.Now().AddDate(0, 1, 0),
				DiscountPercent: 20,
			},
		},
	}

	if err := repos.Events.Create(ctx, event); err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	log.Printf("Event ready: %q (id=%d, tiers=%d, phases=%d)",
		event.Title, event.ID, len(event.TicketTypes), len(event.SalePhases))

	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Seed complete")
}
