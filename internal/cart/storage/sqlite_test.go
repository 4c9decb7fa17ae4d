package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

func TestSQLiteStoreMissIsEmpty(t *testing.T) {
	store := setupSQLiteStore(t)
	lines, err := store.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleLines()))

	lines, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "l1", lines[0].ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "v1", lines[0].VariantID)
	assert.True(t, lines[0].Product.Price.Equal(sampleLines()[0].Product.Price))
}

func TestSQLiteStoreUpsertOverwrites(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleLines()))

	updated := sampleLines()
	updated[0].Quantity = 5
	require.NoError(t, store.Save(ctx, "s1", updated))

	lines, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestSQLiteStoreSessionsAreIsolated(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleLines()))

	lines, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestSQLiteStoreDelete(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleLines()))
	require.NoError(t, store.Delete(ctx, "s1"))

	lines, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, lines)

	require.NoError(t, store.Delete(ctx, "s1"))
}
