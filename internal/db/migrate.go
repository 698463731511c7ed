package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/config"
	"github.com/diewo77/epic-events/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table, parents first.
func Models() []any {
	return []any{
		&models.Role{},
		&models.User{},
		&models.Client{},
		&models.Contract{},
		&models.Event{},
	}
}

// Migrate applies the schema. With MIGRATIONS enabled on PostgreSQL the
// embedded SQL migrations run; otherwise gorm AutoMigrate is used.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, log *slog.Logger) error {
	const op = "db.Migrate"
	if log == nil {
		log = slog.Default()
	}
	if cfg.Migrations && cfg.Driver == config.DriverPostgres {
		if err := RunSQLMigrations(db, log); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		for _, m := range Models() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("%s: automigrate %T: %w", op, m, err)
			}
		}
	}

	for _, table := range []string{"roles", "users", "clients", "contracts", "events"} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("%s: missing table after migration: %s", op, table)
		}
	}
	return nil
}

// RunSQLMigrations runs the embedded PostgreSQL migrations up to the latest version.
func RunSQLMigrations(db *gorm.DB, log *slog.Logger) error {
	const op = "db.RunSQLMigrations"
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database migrations: already up to date")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("database migrations: applied")
	return nil
}
