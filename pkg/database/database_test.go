package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookcatalog/pkg/config"
	"bookcatalog/pkg/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             filepath.Join(t.TempDir(), "catalog.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5,
	}
	db, err := Open(cfg, config.LogConfig{}, zerolog.Nop())
	require.NoError(t, err)
	return db
}

func TestOpenCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"authors", "publishers", "genres", "books", "book_genres"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenUsesFileStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             filepath.Join(dir, "catalog.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5,
	}
	_, err := Open(cfg, config.LogConfig{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = os.Stat(cfg.DSN)
	assert.NoError(t, err)
}

func TestScopeCommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := Scope(db, func(tx *gorm.DB) error {
		return tx.Create(&models.Author{Name: "Committed"}).Error
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.Author{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestScopeRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := Scope(db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Author{Name: "Doomed"}).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&models.Author{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUniqueConstraintPropagates(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Create(&models.Genre{Name: "Unique"}).Error)
	err := db.Create(&models.Genre{Name: "Unique"}).Error
	assert.Error(t, err)
}
