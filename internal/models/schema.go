package models

// Tables lists every generated table in dependency order, parents first.
var Tables = []string{
	"categories",
	"suppliers",
	"warehouses",
	"products",
	"inventory",
	"customers",
	"orders",
	"order_items",
	"reviews",
	"customer_support_tickets",
}

// All returns one zero value per model in dependency order. The generator
// never migrates; tests and local tooling pass this to AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Supplier{},
		&Warehouse{},
		&Product{},
		&Inventory{},
		&Customer{},
		&Order{},
		&OrderItem{},
		&Review{},
		&SupportTicket{},
	}
}
