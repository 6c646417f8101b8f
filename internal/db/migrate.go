package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func gooseDialect(driver string) string {
	switch driver {
	case "sqlite":
		return "sqlite3"
	case "pgx":
		return "postgres"
	}
	return driver
}

func prepareGoose(driver string) error {
	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	goose.SetBaseFS(dir)
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(database *sql.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	if err := goose.Up(database, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("migrations up to date")
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(database *sql.DB, driver string) error {
	if err := prepareGoose(driver); err != nil {
		return err
	}
	if err := goose.Down(database, "."); err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	slog.Info("rolled back one migration")
	return nil
}
