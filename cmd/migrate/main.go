// Command migrate applies the database schema explicitly. Production
// deployments run this instead of relying on startup automigration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := database.WaitForDatabase(context.Background(), cfg, 30*time.Second); err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		log.Println("migrations applied")
	case "status":
		migrator := db.Migrator()
		for _, model := range database.PersistentModels() {
			table := ""
			if stmt := db.Model(model).Statement; stmt != nil {
				if err := stmt.Parse(model); err == nil {
					table = stmt.Schema.Table
				}
			}
			log.Printf("table=%s exists=%t", table, migrator.HasTable(model))
		}
	default:
		return usage()
	}

	return nil
}
