package database

import (
	"testing"

	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = "file:" + t.Name() + "?mode=memory&cache=shared"

	db, err := Open(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db, cfg))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&model.Match{}, "idx_matches_pair"))
	assert.True(t, db.Migrator().HasIndex(&model.Swipe{}, "idx_swipes_pair"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Defaults()
	cfg.DB.Driver = "oracle"

	_, err := Open(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}
