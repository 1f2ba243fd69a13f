package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps dialect and base FS as package state
var migrateMutex sync.Mutex

func RunPsqlMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "postgres", "migrations/postgres")
}

func RunSqliteMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return runMigrations(ctx, sqlDB, "sqlite3", "migrations/sqlite")
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	migrateMutex.Lock()
	defer migrateMutex.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}

	return nil
}
