package main

import (
	"context"
	"log"

	"ovation/internal/config"
	"ovation/internal/database"
	"ovation/internal/logger"
	"ovation/internal/repository"
	"ovation/internal/search"
)

// Rebuilds the Elasticsearch events index from Postgres. Safe to rerun;
// documents are overwritten by event id.

const reindexPageSize = 200

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	indexed := 0
	for page := 1; ; page++ {
		events, err := repos.Events.List(ctx, "", page, reindexPageSize)
		if err != nil {
			log.Fatalf("Failed to list events (page %d): %v", page, err)
		}
		if len(events) == 0 {
			break
		}

		for i := range events {
			if err := esClient.IndexEvent(ctx, &events[i]); err != nil {
				log.Printf("Failed to index event %d: %v", events[i].ID, err)
				continue
			}
			indexed++
		}
	}

	log.Printf("Reindex complete, %d events indexed", indexed)
}
