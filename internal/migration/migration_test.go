package migration

import (
	"io/fs"
	"strings"
	"sync"
	"testing"

	"github.com/smallbiznis/agrichar/internal/config"
	dbpkg "github.com/smallbiznis/agrichar/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestRunCreatesEveryTableOnSQLite(t *testing.T) {
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	require.NoError(t, Run(db, config.Config{DBType: dbpkg.TypeSQLite}))

	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestEmbeddedMigrationsCoverModels(t *testing.T) {
	up, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	require.NoError(t, err)
	down, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.down.sql")
	require.NoError(t, err)

	for _, model := range Models() {
		tabler, ok := model.(schema.Tabler)
		require.True(t, ok, "%T", model)
		name := tabler.TableName()
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+name+" ", name)
		assert.True(t, strings.Contains(string(down), "DROP TABLE IF EXISTS "+name+";"), name)
	}
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil, config.Config{}))
	assert.Error(t, RunMigrations(nil))
}

// MySQL rejects BLOB/TEXT key parts without a prefix length, so every
// indexed string column carries an explicit size.
func TestIndexedStringColumnsAreSized(t *testing.T) {
	for _, model := range Models() {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err, "%T", model)
		for _, field := range s.Fields {
			if field.DataType != schema.String {
				continue
			}
			_, indexed := field.TagSettings["INDEX"]
			_, unique := field.TagSettings["UNIQUEINDEX"]
			if !indexed && !unique {
				continue
			}
			assert.Positive(t, field.Size, "%s.%s", s.Table, field.DBName)
			assert.NotEqual(t, "text", strings.ToLower(field.TagSettings["TYPE"]), "%s.%s", s.Table, field.DBName)
		}
	}
}

func TestYieldPercentageFitsHighRatios(t *testing.T) {
	up, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "yield_percentage NUMERIC(12,2)")
	assert.Contains(t, string(up), "owner_id        VARCHAR(128) NOT NULL,\n    source_type     VARCHAR(32) NOT NULL")

	for _, model := range Models() {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err, "%T", model)
		if field := s.LookUpField("yield_percentage"); field != nil {
			assert.Equal(t, "numeric(12,2)", field.TagSettings["TYPE"])
		}
	}
}
