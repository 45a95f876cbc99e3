package store

import (
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/sqing33/stickyboard/migrations"
	"github.com/sqing33/stickyboard/pkg/errors"
)

// Migrate brings the notes schema up to date using the embedded SQL
// migrations. It is safe to call on every startup; an already-current
// schema is a no-op.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return errors.Wrap(errors.CodePersistence, err, "load embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return errors.Wrap(errors.CodePersistence, err, "open migration target")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(errors.CodePersistence, err, "apply migrations")
	}
	return nil
}

// migrateURL rewrites a postgres:// connection URL to the scheme the
// migrate pgx/v5 driver registers under.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}
