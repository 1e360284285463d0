package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/marcelsud/automation-connect/config"
	"github.com/marcelsud/automation-connect/internal/logger"
	"github.com/marcelsud/automation-connect/webhook/postgres"
	"github.com/marcelsud/automation-connect/webhook/sqlite"
)

/* migrate applies the webhook log schema for the configured STORAGE_DRIVER
 * Usage: go run cmd/migrate/main.go
 * memory and redis need no schema
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Printf("❌ Error loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("automation-connect-migrate", cfg.LogLevel, cfg.LogJSON)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cfg.StorageDriver {
	case config.StorageSQLite:
		fmt.Printf("🔗 Opening SQLite database %s...\n", cfg.SQLitePath)
		repo, err := sqlite.Open(ctx, cfg.SQLitePath, log)
		if err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
		defer repo.Close(ctx)
	case config.StoragePostgres:
		fmt.Println("🔗 Connecting to PostgreSQL...")
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			fmt.Printf("❌ Error connecting to PostgreSQL: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.Migrate(pool, log); err != nil {
			fmt.Printf("❌ Migration failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Nothing to migrate for storage driver %s\n", cfg.StorageDriver)
		return
	}
	fmt.Println("✅ Migrations applied")
}
