package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_shop/internal/domain"
)

func TestReserveStock_Success(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	product, _ := createProductAndInventory(t, repo, "SKU_RES", 10, "5.00")

	require.NoError(t, repo.ReserveStock(ctx, product.ID, 4))

	inv, err := repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, inv.QuantityInStock)
}

func TestReserveStock_InsufficientStock(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	product, _ := createProductAndInventory(t, repo, "SKU_LOW", 3, "5.00")

	err := repo.ReserveStock(ctx, product.ID, 4)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Available)

	// Stock unchanged after the failed reservation.
	inv, err := repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.QuantityInStock)
}

func TestReserveStock_InvalidQuantity(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	product, _ := createProductAndInventory(t, repo, "SKU_ZERO", 3, "5.00")

	assert.ErrorIs(t, repo.ReserveStock(ctx, product.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, repo.ReserveStock(ctx, product.ID, -1), ErrInvalidQuantity)

	inv, err := repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.QuantityInStock)
}

// A competing transaction sitting on the row lock must bound the wait:
// the reservation fails with ErrStockContention instead of blocking, and a
// retry after the lock is released goes through.
func TestReserveStock_ContentionTimeout(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	product, _ := createProductAndInventory(t, repo, "SKU_LOCKED", 5, "5.00")

	prev := lockTimeout
	lockTimeout = "200ms"
	t.Cleanup(func() { lockTimeout = prev })

	blocker, err := repo.db.Beginx()
	require.NoError(t, err)
	defer blocker.Rollback()

	var locked int
	require.NoError(t, blocker.Get(&locked,
		`SELECT quantity_in_stock FROM inventory WHERE product_id = $1 FOR UPDATE`, product.ID))

	err = repo.ReserveStock(ctx, product.ID, 1)
	assert.ErrorIs(t, err, ErrStockContention)

	// Stock untouched by the timed-out attempt.
	inv, err := repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.QuantityInStock)

	require.NoError(t, blocker.Rollback())

	require.NoError(t, repo.ReserveStock(ctx, product.ID, 1))
	inv, err = repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, inv.QuantityInStock)
}

func TestReserveStock_InventoryNotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.ReserveStock(context.Background(), 99999, 1)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

// The central correctness property: N contenders against K units of stock
// see exactly K successes and the counter never goes negative.
func TestReserveStock_ConcurrentContenders(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	const stock = 5
	const contenders = 20

	product, _ := createProductAndInventory(t, repo, "SKU_RACE", stock, "5.00")

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.ReserveStock(ctx, product.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	successes, failures := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		failures++
	}

	assert.Equal(t, stock, successes)
	assert.Equal(t, contenders-stock, failures)

	inv, err := repo.GetInventoryByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.QuantityInStock)
}

func TestRestock_Success(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, inventory := createProductAndInventory(t, repo, "SKU_RESTOCK", 2, "5.00")
	require.Nil(t, inventory.LastRestockedAt)

	updated, err := repo.Restock(ctx, inventory.ID, 8)
	require.NoError(t, err)

	assert.Equal(t, 10, updated.QuantityInStock)
	require.NotNil(t, updated.LastRestockedAt)
}

func TestRestock_InvalidQuantity(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, inventory := createProductAndInventory(t, repo, "SKU_RESTOCK_BAD", 2, "5.00")

	_, err := repo.Restock(ctx, inventory.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = repo.Restock(ctx, inventory.ID, -5)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRestock_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Restock(context.Background(), 99999, 5)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestCreateInventory_DuplicateProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	product, _ := createProductAndInventory(t, repo, "SKU_DUP", 2, "5.00")

	err := repo.CreateInventory(ctx, &domain.Inventory{ProductID: product.ID, QuantityInStock: 1})
	assert.ErrorIs(t, err, ErrInventoryExists)
}

func TestCreateInventory_MissingProduct(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.CreateInventory(context.Background(), &domain.Inventory{ProductID: 99999})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListInventories_LowStockOnly(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	pLow, _ := createProductAndInventory(t, repo, "SKU_LOW_A", 1, "5.00") // reorder_level 1
	createProductAndInventory(t, repo, "SKU_OK_B", 50, "5.00")

	all, err := repo.ListInventories(ctx, false, 100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := repo.ListInventories(ctx, true, 100, 0)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, pLow.ID, low[0].ProductID)
}

func TestUpdateReorderLevel(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, inventory := createProductAndInventory(t, repo, "SKU_REORDER", 5, "5.00")

	updated, err := repo.UpdateReorderLevel(ctx, inventory.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.ReorderLevel)
	assert.Equal(t, 5, updated.QuantityInStock)

	_, err = repo.UpdateReorderLevel(ctx, inventory.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestGetInventoryByProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetInventoryByProduct(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}
