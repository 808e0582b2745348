package repository

import (
	"context"
	"testing"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return testDB, NewCartRepository(testDB)
}

func TestCartRepository_Create(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	cartItem := &model.CartItem{Name: "Test Item", Price: 10, Quantity: 1}

	err := repo.Create(ctx, cartItem)
	assert.NoError(t, err)
	assert.NotZero(t, cartItem.ID)
}

func TestCartRepository_IDsAreMonotonic(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	first := &model.CartItem{Name: "First", Price: 1, Quantity: 1}
	second := &model.CartItem{Name: "Second", Price: 2, Quantity: 1}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Delete(ctx, first.ID))
	require.NoError(t, repo.Create(ctx, second))

	assert.Greater(t, second.ID, first.ID)
}

func TestCartRepository_FindAll_InsertionOrder(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	names := []string{"Item 1", "Item 2", "Item 3"}
	for i, name := range names {
		require.NoError(t, repo.Create(ctx, &model.CartItem{Name: name, Price: float64(i + 1), Quantity: 1}))
	}

	items, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, names[i], item.Name)
	}
}

func TestCartRepository_FindAll_Empty(t *testing.T) {
	_, repo := setupCartTest(t)

	items, err := repo.FindAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepository_FindByID(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	cartItem := &model.CartItem{Name: "Test Item", Price: 9.99, Quantity: 3}
	require.NoError(t, repo.Create(ctx, cartItem))

	found, err := repo.FindByID(ctx, cartItem.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Test Item", found.Name)
	assert.Equal(t, 9.99, found.Price)
	assert.Equal(t, 3, found.Quantity)
}

func TestCartRepository_FindByID_NotFound(t *testing.T) {
	_, repo := setupCartTest(t)

	_, err := repo.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_UpdateQuantity(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	cartItem := &model.CartItem{Name: "Test Item", Price: 10, Quantity: 1}
	require.NoError(t, repo.Create(ctx, cartItem))

	err := repo.UpdateQuantity(ctx, cartItem.ID, 5)
	assert.NoError(t, err)

	found, _ := repo.FindByID(ctx, cartItem.ID)
	assert.Equal(t, 5, found.Quantity)
	assert.Equal(t, 10.0, found.Price)
}

func TestCartRepository_UpdateQuantity_NotFound(t *testing.T) {
	_, repo := setupCartTest(t)

	err := repo.UpdateQuantity(context.Background(), 9999, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_Delete(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	cartItem := &model.CartItem{Name: "Test Item", Price: 10, Quantity: 1}
	require.NoError(t, repo.Create(ctx, cartItem))

	err := repo.Delete(ctx, cartItem.ID)
	assert.NoError(t, err)

	_, err = repo.FindByID(ctx, cartItem.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, cartItem.ID), gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteAll(t *testing.T) {
	_, repo := setupCartTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.CartItem{Name: "A", Price: 1, Quantity: 1}))
	require.NoError(t, repo.Create(ctx, &model.CartItem{Name: "B", Price: 2, Quantity: 2}))

	err := repo.DeleteAll(ctx)
	assert.NoError(t, err)

	items, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, items)

	assert.NoError(t, repo.DeleteAll(ctx))
}
