package main

import (
	"context"
	"flag"
	"log"

	"github.com/lucaCambi77/valr/internal/infrastructure/postgresql/trade"
	"github.com/lucaCambi77/valr/pkg/config"
	"github.com/lucaCambi77/valr/pkg/logger"
	migrationpg "github.com/lucaCambi77/valr/pkg/migration-pg"
	"github.com/lucaCambi77/valr/pkg/postgresql"
)

func main() {
	var (
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of migrations to apply (0 applies all pending ones going up)")
	)
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	client, err := postgresql.NewClient(ctx, cfg.Postgres.Config)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer client.Close()

	runner := migrationpg.NewRunner(client, appLogger, migrationpg.Config{
		Source: trade.Migrations,
		Dir:    trade.MigrationsDir,
	})

	switch *direction {
	case "up":
		err = runner.MigrateUp(ctx, *steps)
	case "down":
		err = runner.MigrateDown(ctx, *steps)
	default:
		log.Fatalf("Unknown direction %q", *direction)
	}
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
}
