package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Category represents a product category
type Category struct {
	CategoryID   uint   `json:"categoryId" gorm:"column:category_id;primaryKey;autoIncrement"`
	CategoryName string `json:"categoryName" gorm:"column:category_name;type:varchar(100);not null"`
	Description  string `json:"description" gorm:"column:description;type:text"`
}

func (Category) TableName() string {
	return "categories"
}

// Supplier represents a company supplying products
type Supplier struct {
	SupplierID   uint            `json:"supplierId" gorm:"column:supplier_id;primaryKey;autoIncrement"`
	SupplierName string          `json:"supplierName" gorm:"column:supplier_name;type:varchar(200);not null"`
	Country      string          `json:"country" gorm:"column:country;type:varchar(100)"`
	ContactEmail string          `json:"contactEmail" gorm:"column:contact_email;type:varchar(200)"`
	Rating       decimal.Decimal `json:"rating" gorm:"column:rating;type:numeric(3,2)"`
	Active       bool            `json:"active" gorm:"column:active;default:true"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Product represents a sellable item. Price always exceeds cost.
type Product struct {
	ProductID   uint            `json:"productId" gorm:"column:product_id;primaryKey;autoIncrement"`
	ProductName string          `json:"productName" gorm:"column:product_name;type:varchar(200);not null"`
	CategoryID  uint            `json:"categoryId" gorm:"column:category_id;not null;index"`
	SupplierID  uint            `json:"supplierId" gorm:"column:supplier_id;not null;index"`
	Price       decimal.Decimal `json:"price" gorm:"column:price;type:numeric(10,2);not null"`
	Cost        decimal.Decimal `json:"cost" gorm:"column:cost;type:numeric(10,2);not null"`
	SKU         string          `json:"sku" gorm:"column:sku;type:varchar(50)"`
	Description string          `json:"description" gorm:"column:description;type:text"`
	Active      bool            `json:"active" gorm:"column:active;default:true"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:CategoryID"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID;references:SupplierID"`
}

func (Product) TableName() string {
	return "products"
}

// Warehouse represents a storage location
type Warehouse struct {
	WarehouseID   uint   `json:"warehouseId" gorm:"column:warehouse_id;primaryKey;autoIncrement"`
	WarehouseName string `json:"warehouseName" gorm:"column:warehouse_name;type:varchar(200);not null"`
	Country       string `json:"country" gorm:"column:country;type:varchar(100)"`
	City          string `json:"city" gorm:"column:city;type:varchar(100)"`
	Active        bool   `json:"active" gorm:"column:active;default:true"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// Inventory is the stock of one product held in one warehouse
type Inventory struct {
	InventoryID       uint           `json:"inventoryId" gorm:"column:inventory_id;primaryKey;autoIncrement"`
	ProductID         uint           `json:"productId" gorm:"column:product_id;not null;index"`
	WarehouseID       uint           `json:"warehouseId" gorm:"column:warehouse_id;not null;index"`
	StockQuantity     int            `json:"stockQuantity" gorm:"column:stock_quantity;not null"`
	ReorderLevel      int            `json:"reorderLevel" gorm:"column:reorder_level"`
	LastRestockedDate datatypes.Date `json:"lastRestockedDate" gorm:"column:last_restocked_date"`

	// Relationships
	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID;references:WarehouseID"`
}

func (Inventory) TableName() string {
	return "inventory"
}
