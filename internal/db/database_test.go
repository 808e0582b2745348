package db

import (
	"testing"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemoryKeepsData(t *testing.T) {
	conn, err := Open("file:open_test?mode=memory&cache=shared", 2)
	require.NoError(t, err)
	t.Cleanup(func() { CleanupTestDB(conn) })

	require.NoError(t, MigrateDB(conn))
	require.NoError(t, conn.Create(&model.CartItem{Name: "Pen", Price: 1.5, Quantity: 1}).Error)

	var count int64
	require.NoError(t, conn.Model(&model.CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTruncateAllTables(t *testing.T) {
	conn, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(conn)

	require.NoError(t, conn.Create(&model.CartItem{Name: "Pen", Price: 1.5, Quantity: 1}).Error)
	require.NoError(t, TruncateAllTables(conn))

	var count int64
	require.NoError(t, conn.Model(&model.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}
