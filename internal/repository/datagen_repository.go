package repository

import (
	"context"
	"fmt"

	"ecommerce-datagen/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// insertBatchSize caps the rows sent in one INSERT statement.
const insertBatchSize = 500

// lookupBatchSize caps the ids bound in one IN clause. Postgres allows at
// most 65535 parameters per statement.
var lookupBatchSize = 1000

// DatagenRepository defines the persistence operations of a generation run
type DatagenRepository interface {
	// WithTransaction runs fn against a repository bound to one transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(txRepo DatagenRepository) error) error

	CreateCategories(ctx context.Context, categories []models.Category) ([]uint, error)
	CreateSuppliers(ctx context.Context, suppliers []models.Supplier) ([]uint, error)
	CreateWarehouses(ctx context.Context, warehouses []models.Warehouse) ([]uint, error)
	CreateProducts(ctx context.Context, products []models.Product) ([]uint, error)
	CreateInventory(ctx context.Context, rows []models.Inventory) (int64, error)
	CreateCustomers(ctx context.Context, customers []models.Customer) ([]uint, error)
	CreateOrders(ctx context.Context, orders []models.Order) ([]uint, error)
	CreateReviews(ctx context.Context, reviews []models.Review) ([]uint, error)
	CreateTickets(ctx context.Context, tickets []models.SupportTicket) ([]uint, error)

	// ProductPrices returns the current price of each requested product.
	ProductPrices(ctx context.Context, productIDs []uint) (map[uint]decimal.Decimal, error)

	// Read side used by stats and verification
	CountRows(ctx context.Context) (map[string]int64, error)
	PluckIDs(ctx context.Context, table, column string) ([]uint, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListInventory(ctx context.Context) ([]models.Inventory, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	ListTickets(ctx context.Context) ([]models.SupportTicket, error)

	Ping(ctx context.Context) error
}

type datagenRepository struct {
	db *gorm.DB
}

// NewDatagenRepository creates a new datagen repository
func NewDatagenRepository(db *gorm.DB) DatagenRepository {
	return &datagenRepository{db: db}
}

func (r *datagenRepository) WithTransaction(ctx context.Context, fn func(txRepo DatagenRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&datagenRepository{db: tx})
	})
}

// createInBatches inserts rows and collects the primary keys the database
// assigned to them.
func createInBatches[T any](ctx context.Context, db *gorm.DB, rows []T, id func(*T) uint) ([]uint, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = id(&rows[i])
	}
	return ids, nil
}

func (r *datagenRepository) CreateCategories(ctx context.Context, categories []models.Category) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, categories, func(c *models.Category) uint { return c.CategoryID })
	if err != nil {
		return nil, fmt.Errorf("failed to create categories: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateSuppliers(ctx context.Context, suppliers []models.Supplier) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, suppliers, func(s *models.Supplier) uint { return s.SupplierID })
	if err != nil {
		return nil, fmt.Errorf("failed to create suppliers: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateWarehouses(ctx context.Context, warehouses []models.Warehouse) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, warehouses, func(w *models.Warehouse) uint { return w.WarehouseID })
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouses: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateProducts(ctx context.Context, products []models.Product) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, products, func(p *models.Product) uint { return p.ProductID })
	if err != nil {
		return nil, fmt.Errorf("failed to create products: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateInventory(ctx context.Context, rows []models.Inventory) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create inventory: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *datagenRepository) CreateCustomers(ctx context.Context, customers []models.Customer) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, customers, func(c *models.Customer) uint { return c.CustomerID })
	if err != nil {
		return nil, fmt.Errorf("failed to create customers: %w", err)
	}
	return ids, nil
}

// CreateOrders inserts the orders together with their items.
func (r *datagenRepository) CreateOrders(ctx context.Context, orders []models.Order) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, orders, func(o *models.Order) uint { return o.OrderID })
	if err != nil {
		return nil, fmt.Errorf("failed to create orders: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateReviews(ctx context.Context, reviews []models.Review) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, reviews, func(rv *models.Review) uint { return rv.ReviewID })
	if err != nil {
		return nil, fmt.Errorf("failed to create reviews: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) CreateTickets(ctx context.Context, tickets []models.SupportTicket) ([]uint, error) {
	ids, err := createInBatches(ctx, r.db, tickets, func(t *models.SupportTicket) uint { return t.TicketID })
	if err != nil {
		return nil, fmt.Errorf("failed to create support tickets: %w", err)
	}
	return ids, nil
}

func (r *datagenRepository) ProductPrices(ctx context.Context, productIDs []uint) (map[uint]decimal.Decimal, error) {
	prices := make(map[uint]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}

	for start := 0; start < len(productIDs); start += lookupBatchSize {
		end := start + lookupBatchSize
		if end > len(productIDs) {
			end = len(productIDs)
		}

		var rows []struct {
			ProductID uint
			Price     decimal.Decimal
		}
		if err := r.db.WithContext(ctx).Model(&models.Product{}).
			Select("product_id, price").
			Where("product_id IN ?", productIDs[start:end]).
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load product prices: %w", err)
		}
		for _, row := range rows {
			prices[row.ProductID] = row.Price
		}
	}
	return prices, nil
}

func (r *datagenRepository) CountRows(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(models.Tables))
	for _, table := range models.Tables {
		var n int64
		if err := r.db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// PluckIDs returns every value of an id column. table must be one of models.Tables.
func (r *datagenRepository) PluckIDs(ctx context.Context, table, column string) ([]uint, error) {
	if !knownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Table(table).Pluck(column, &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s.%s: %w", table, column, err)
	}
	return ids, nil
}

func (r *datagenRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("product_id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *datagenRepository) ListInventory(ctx context.Context) ([]models.Inventory, error) {
	var rows []models.Inventory
	if err := r.db.WithContext(ctx).Order("inventory_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return rows, nil
}

// ListOrders returns every order with its items preloaded.
func (r *datagenRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_item_id")
		}).
		Order("order_id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *datagenRepository) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Order("review_id").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *datagenRepository) ListTickets(ctx context.Context) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := r.db.WithContext(ctx).Order("ticket_id").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list support tickets: %w", err)
	}
	return tickets, nil
}

func (r *datagenRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func knownTable(table string) bool {
	for _, t := range models.Tables {
		if t == table {
			return true
		}
	}
	return false
}
