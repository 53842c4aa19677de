package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/conservation"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every ledger table, in dependency order.
func Models() []any {
	return []any{
		&parceldomain.Parcel{},
		&biomassdomain.Record{},
		&biochardomain.Batch{},
		&storagedomain.Record{},
		&fertilizerdomain.Inventory{},
		&fertilizerdomain.Usage{},
		&applicationdomain.Record{},
		&conservation.Movement{},
	}
}

// Run brings the schema up to date. Postgres uses the versioned SQL
// migrations; sqlite and mysql are created from the models.
func Run(conn *gorm.DB, cfg config.Config) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	switch cfg.DBType {
	case dbpkg.TypePostgres:
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	default:
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
}

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// migrator.Close would close the shared *sql.DB

	return nil
}
