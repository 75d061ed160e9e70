package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-datagen/internal/models"
	"ecommerce-datagen/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) DatagenRepository {
	t.Helper()
	return NewDatagenRepository(testutil.NewTestDB(t))
}

func seedCatalog(t *testing.T, repo DatagenRepository) (productIDs []uint) {
	t.Helper()
	ctx := context.Background()

	categoryIDs, err := repo.CreateCategories(ctx, []models.Category{{CategoryName: "Books"}})
	require.NoError(t, err)
	supplierIDs, err := repo.CreateSuppliers(ctx, []models.Supplier{{SupplierName: "Acme", Rating: decimal.RequireFromString("4.20"), Active: true}})
	require.NoError(t, err)

	productIDs, err = repo.CreateProducts(ctx, []models.Product{
		{ProductName: "Classic Kit 1", CategoryID: categoryIDs[0], SupplierID: supplierIDs[0], Price: decimal.RequireFromString("30.00"), Cost: decimal.RequireFromString("12.50"), Active: true},
		{ProductName: "Smart Tool 2", CategoryID: categoryIDs[0], SupplierID: supplierIDs[0], Price: decimal.RequireFromString("99.99"), Cost: decimal.RequireFromString("40.00"), Active: true},
	})
	require.NoError(t, err)
	return productIDs
}

func TestCreateReturnsAssignedIDs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	ids, err := repo.CreateWarehouses(ctx, []models.Warehouse{
		{WarehouseName: "Lyon Distribution Center", Active: true},
		{WarehouseName: "Osaka Distribution Center", Active: true},
		{WarehouseName: "Austin Distribution Center", Active: true},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)

	stored, err := repo.PluckIDs(ctx, "warehouses", "warehouse_id")
	require.NoError(t, err)
	assert.ElementsMatch(t, stored, ids)
}

func TestCreateEmptyIsNoop(t *testing.T) {
	repo := setupRepo(t)

	ids, err := repo.CreateCustomers(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	n, err := repo.CreateInventory(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateOrdersStoresItems(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	productIDs := seedCatalog(t, repo)

	customerIDs, err := repo.CreateCustomers(ctx, []models.Customer{{FirstName: "Ava", LastName: "Smith", Email: "ava@example.com", Segment: models.CustomerSegmentNew}})
	require.NoError(t, err)

	order := models.Order{
		CustomerID:    customerIDs[0],
		OrderDate:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Status:        models.OrderStatusProcessing,
		ShippingCost:  decimal.RequireFromString("5.00"),
		PaymentMethod: models.PaymentMethodPayPal,
		Items: []models.OrderItem{
			{ProductID: productIDs[0], Quantity: 2, UnitPrice: decimal.RequireFromString("30.00"), LineTotal: decimal.RequireFromString("60.00")},
			{ProductID: productIDs[1], Quantity: 1, UnitPrice: decimal.RequireFromString("99.99"), LineTotal: decimal.RequireFromString("99.99")},
		},
	}
	order.TotalAmount = order.CalculateTotal()

	ids, err := repo.CreateOrders(ctx, []models.Order{order})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, ids[0], orders[0].OrderID)
	require.Len(t, orders[0].Items, 2)
	for _, item := range orders[0].Items {
		assert.Equal(t, ids[0], item.OrderID)
	}
	assert.True(t, decimal.RequireFromString("164.99").Equal(orders[0].TotalAmount), orders[0].TotalAmount.String())
}

func TestProductPrices(t *testing.T) {
	repo := setupRepo(t)
	productIDs := seedCatalog(t, repo)

	prices, err := repo.ProductPrices(context.Background(), productIDs)
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.True(t, decimal.RequireFromString("30.00").Equal(prices[productIDs[0]]))
	assert.True(t, decimal.RequireFromString("99.99").Equal(prices[productIDs[1]]))

	empty, err := repo.ProductPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductPricesSpansLookupBatches(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	productIDs := seedCatalog(t, repo)

	more, err := repo.CreateProducts(ctx, []models.Product{
		{ProductName: "Eco Lamp 3", CategoryID: 1, SupplierID: 1, Price: decimal.RequireFromString("15.25"), Cost: decimal.RequireFromString("5.00"), Active: true},
	})
	require.NoError(t, err)
	productIDs = append(productIDs, more...)

	defer func(size int) { lookupBatchSize = size }(lookupBatchSize)
	lookupBatchSize = 2

	prices, err := repo.ProductPrices(ctx, productIDs)
	require.NoError(t, err)
	require.Len(t, prices, 3)
	assert.True(t, decimal.RequireFromString("30.00").Equal(prices[productIDs[0]]))
	assert.True(t, decimal.RequireFromString("99.99").Equal(prices[productIDs[1]]))
	assert.True(t, decimal.RequireFromString("15.25").Equal(prices[productIDs[2]]), "product past the first batch")
}

func TestWithTransactionRollsBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(txRepo DatagenRepository) error {
		if _, err := txRepo.CreateCategories(ctx, []models.Category{{CategoryName: "Toys"}}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	counts, err := repo.CountRows(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts["categories"])
}

func TestWithTransactionCommits(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(txRepo DatagenRepository) error {
		_, err := txRepo.CreateCategories(ctx, []models.Category{{CategoryName: "Toys"}, {CategoryName: "Books"}})
		return err
	})
	require.NoError(t, err)

	counts, err := repo.CountRows(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, len(models.Tables))
	assert.Equal(t, int64(2), counts["categories"])
	assert.Zero(t, counts["orders"])
}

func TestForeignKeyViolationFails(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.CreateTickets(context.Background(), []models.SupportTicket{{
		CustomerID:  999,
		Status:      models.TicketStatusOpen,
		CreatedDate: time.Now(),
	}})
	assert.Error(t, err)
}

func TestPluckIDsRejectsUnknownTable(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.PluckIDs(context.Background(), "users; DROP TABLE orders", "id")
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	assert.NoError(t, setupRepo(t).Ping(context.Background()))
}
