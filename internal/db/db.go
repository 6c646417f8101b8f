package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens a database handle for the configured driver and verifies it
// with a ping. The sqlite driver gets its data directory created on demand.
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		path, _, _ := strings.Cut(connection, "?")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}

	database, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return database, nil
}

func Close(database *sqlx.DB) error {
	if database != nil {
		return database.Close()
	}
	return nil
}
