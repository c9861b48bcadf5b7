package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fjod/go_shop/internal/domain"
)

func setupTestDB(t *testing.T) *Repository {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	return repo
}

func createProductAndInventory(t *testing.T, repo *Repository, sku string, qty int, price string) (*domain.Product, *domain.Inventory) {
	t.Helper()
	ctx := context.Background()

	product := &domain.Product{
		SKU:   sku,
		Name:  "Prod " + sku,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, repo.CreateProduct(ctx, product))

	inventory := &domain.Inventory{
		ProductID:       product.ID,
		QuantityInStock: qty,
		ReorderLevel:    1,
	}
	require.NoError(t, repo.CreateInventory(ctx, inventory))

	return product, inventory
}

func createCartWithItem(t *testing.T, repo *Repository, userID, productID int64, quantity int) *domain.Cart {
	t.Helper()
	ctx := context.Background()

	cart, err := repo.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)

	_, err = repo.AddCartItem(ctx, cart.ID, productID, quantity)
	require.NoError(t, err)

	cart, err = repo.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	return cart
}

func newTestOrder(userID int64, cartID int64, items []domain.OrderItem) *domain.Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return &domain.Order{
		Reference:   uuid.New(),
		UserID:      userID,
		CartID:      &cartID,
		Address:     "123 Test St",
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		Items:       items,
	}
}

func orderItemFor(product *domain.Product, quantity int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		Subtotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
