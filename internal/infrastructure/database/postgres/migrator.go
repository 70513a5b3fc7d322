package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
)

// Migrate applies all pending schema migrations from migrationsPath against
// the pool's database.  A no-op when the schema is already current.
func Migrate(pool *pgxpool.Pool, migrationsPath string, logger logging.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMigrationError, "failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath), "pgx", driver)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMigrationError, "failed to create migrator")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema already current")
			return nil
		}
		return apperrors.Wrap(err, apperrors.CodeMigrationError, "failed to apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMigrationError, "failed to read schema version")
	}
	logger.Info("migrations applied",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
