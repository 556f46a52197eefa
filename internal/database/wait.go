package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wayfarer/internal/config"
	"wayfarer/internal/middleware"

	// Plain database/sql driver for the pre-flight ping.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// WaitForDatabase polls the database until it accepts connections or the
// timeout elapses. Deploy jobs run this before migrations so a slow
// Postgres startup doesn't fail the release.
func WaitForDatabase(ctx context.Context, cfg *config.Config, timeout time.Duration) error {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not reachable after %s: %w", timeout, err)
		}

		middleware.Logger.Info("waiting for database", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
