package services

import (
	"context"
	"fmt"
	"time"

	"ecommerce-datagen/internal/models"
	"ecommerce-datagen/internal/repository"

	"github.com/sirupsen/logrus"
)

// Verification rules
const (
	RuleOrderTotal         = "order_total"
	RuleLineTotal          = "line_total"
	RuleOrderItems         = "order_items"
	RuleShippingDate       = "order_shipping_date"
	RuleDeliveryDate       = "order_delivery_date"
	RuleProductPrice       = "product_price"
	RuleInventoryPlacement = "inventory_placement"
	RuleReviewRating       = "review_rating"
	RuleTicketResolution   = "ticket_resolution"
	RuleForeignKeys        = "foreign_keys"
)

// maxSamples caps the violations kept per rule.
const maxSamples = 20

// dayTolerance absorbs daylight saving shifts between two stored instants.
const dayTolerance = time.Hour

// Violation is one row breaking a rule
type Violation struct {
	Table  string `json:"table"`
	RowID  uint   `json:"rowId"`
	Detail string `json:"detail"`
}

// RuleResult aggregates the outcome of one rule
type RuleResult struct {
	Rule       string      `json:"rule"`
	Checked    int         `json:"checked"`
	Violations int         `json:"violations"`
	Samples    []Violation `json:"samples,omitempty"`
}

// VerificationReport lists every rule checked against the stored dataset
type VerificationReport struct {
	CheckedAt       time.Time    `json:"checkedAt"`
	Rules           []RuleResult `json:"rules"`
	TotalViolations int          `json:"totalViolations"`
}

// OK reports whether no rule was violated.
func (r *VerificationReport) OK() bool {
	return r.TotalViolations == 0
}

// Rule returns the result for name, or nil.
func (r *VerificationReport) Rule(name string) *RuleResult {
	for i := range r.Rules {
		if r.Rules[i].Rule == name {
			return &r.Rules[i]
		}
	}
	return nil
}

// Verifier checks the integrity rules of a generated dataset
type Verifier struct {
	repo   repository.DatagenRepository
	logger *logrus.Entry
}

// NewVerifier creates a new verifier
func NewVerifier(repo repository.DatagenRepository, logger *logrus.Entry) *Verifier {
	return &Verifier{repo: repo, logger: logger}
}

type ruleSet struct {
	results map[string]*RuleResult
	order   []string
}

func newRuleSet(names ...string) *ruleSet {
	rs := &ruleSet{results: make(map[string]*RuleResult, len(names)), order: names}
	for _, name := range names {
		rs.results[name] = &RuleResult{Rule: name}
	}
	return rs
}

func (rs *ruleSet) check(rule string) {
	rs.results[rule].Checked++
}

func (rs *ruleSet) fail(rule, table string, rowID uint, format string, args ...interface{}) {
	res := rs.results[rule]
	res.Violations++
	if len(res.Samples) < maxSamples {
		res.Samples = append(res.Samples, Violation{Table: table, RowID: rowID, Detail: fmt.Sprintf(format, args...)})
	}
}

func (rs *ruleSet) report(checkedAt time.Time) *VerificationReport {
	report := &VerificationReport{CheckedAt: checkedAt}
	for _, name := range rs.order {
		res := *rs.results[name]
		report.Rules = append(report.Rules, res)
		report.TotalViolations += res.Violations
	}
	return report
}

type idSet map[uint]struct{}

func newIDSet(ids []uint) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Verify loads the dataset and checks every rule.
func (v *Verifier) Verify(ctx context.Context) (*VerificationReport, error) {
	rs := newRuleSet(
		RuleOrderTotal, RuleLineTotal, RuleOrderItems, RuleShippingDate, RuleDeliveryDate,
		RuleProductPrice, RuleInventoryPlacement, RuleReviewRating, RuleTicketResolution, RuleForeignKeys,
	)

	parents := map[string]idSet{}
	for _, ref := range []struct{ table, column string }{
		{"categories", "category_id"},
		{"suppliers", "supplier_id"},
		{"warehouses", "warehouse_id"},
		{"customers", "customer_id"},
	} {
		ids, err := v.repo.PluckIDs(ctx, ref.table, ref.column)
		if err != nil {
			return nil, err
		}
		parents[ref.table] = newIDSet(ids)
	}

	products, err := v.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	productIDs := make(idSet, len(products))
	for _, p := range products {
		productIDs[p.ProductID] = struct{}{}
	}
	parents["products"] = productIDs
	v.checkProducts(rs, products, parents)

	inventory, err := v.repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	v.checkInventory(rs, inventory, parents)

	orders, err := v.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	v.checkOrders(rs, orders, parents)

	reviews, err := v.repo.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	v.checkReviews(rs, reviews, parents)

	tickets, err := v.repo.ListTickets(ctx)
	if err != nil {
		return nil, err
	}
	v.checkTickets(rs, tickets, parents)

	report := rs.report(time.Now())
	v.logger.WithFields(logrus.Fields{
		"orders":     len(orders),
		"products":   len(products),
		"violations": report.TotalViolations,
	}).Info("Verification finished")
	return report, nil
}

func (v *Verifier) checkProducts(rs *ruleSet, products []models.Product, parents map[string]idSet) {
	for _, p := range products {
		rs.check(RuleProductPrice)
		if !p.Price.GreaterThan(p.Cost) {
			rs.fail(RuleProductPrice, "products", p.ProductID, "price %s is not above cost %s", p.Price, p.Cost)
		}

		rs.check(RuleForeignKeys)
		if !parents["categories"].has(p.CategoryID) {
			rs.fail(RuleForeignKeys, "products", p.ProductID, "unknown category %d", p.CategoryID)
		}
		rs.check(RuleForeignKeys)
		if !parents["suppliers"].has(p.SupplierID) {
			rs.fail(RuleForeignKeys, "products", p.ProductID, "unknown supplier %d", p.SupplierID)
		}
	}
}

func (v *Verifier) checkInventory(rs *ruleSet, rows []models.Inventory, parents map[string]idSet) {
	placements := map[uint]map[uint]int{}
	for _, row := range rows {
		rs.check(RuleForeignKeys)
		if !parents["products"].has(row.ProductID) {
			rs.fail(RuleForeignKeys, "inventory", row.InventoryID, "unknown product %d", row.ProductID)
		}
		rs.check(RuleForeignKeys)
		if !parents["warehouses"].has(row.WarehouseID) {
			rs.fail(RuleForeignKeys, "inventory", row.InventoryID, "unknown warehouse %d", row.WarehouseID)
		}

		if placements[row.ProductID] == nil {
			placements[row.ProductID] = map[uint]int{}
		}
		placements[row.ProductID][row.WarehouseID]++
	}

	for productID, warehouses := range placements {
		rs.check(RuleInventoryPlacement)
		rows := 0
		for warehouseID, n := range warehouses {
			rows += n
			if n > 1 {
				rs.fail(RuleInventoryPlacement, "inventory", productID, "product %d stocked %d times in warehouse %d", productID, n, warehouseID)
			}
		}
		if rows > 2 {
			rs.fail(RuleInventoryPlacement, "inventory", productID, "product %d stocked in %d rows", productID, rows)
		}
	}

	// Every product is stocked somewhere once warehouses exist.
	if len(parents["warehouses"]) == 0 {
		return
	}
	for productID := range parents["products"] {
		if _, stocked := placements[productID]; stocked {
			continue
		}
		rs.check(RuleInventoryPlacement)
		rs.fail(RuleInventoryPlacement, "products", productID, "product %d has no inventory row", productID)
	}
}

func (v *Verifier) checkOrders(rs *ruleSet, orders []models.Order, parents map[string]idSet) {
	for i := range orders {
		o := &orders[i]

		rs.check(RuleForeignKeys)
		if !parents["customers"].has(o.CustomerID) {
			rs.fail(RuleForeignKeys, "orders", o.OrderID, "unknown customer %d", o.CustomerID)
		}

		rs.check(RuleOrderItems)
		seen := map[uint]bool{}
		if n := len(o.Items); n < 1 || n > maxItemsPerOrder {
			rs.fail(RuleOrderItems, "orders", o.OrderID, "order has %d items", n)
		}
		for _, item := range o.Items {
			if seen[item.ProductID] {
				rs.fail(RuleOrderItems, "orders", o.OrderID, "product %d appears twice", item.ProductID)
			}
			seen[item.ProductID] = true

			rs.check(RuleForeignKeys)
			if !parents["products"].has(item.ProductID) {
				rs.fail(RuleForeignKeys, "order_items", item.OrderItemID, "unknown product %d", item.ProductID)
			}

			rs.check(RuleLineTotal)
			if want := models.CalculateLineTotal(item.UnitPrice, item.Quantity, item.DiscountPercent); !want.Equal(item.LineTotal) {
				rs.fail(RuleLineTotal, "order_items", item.OrderItemID, "line total %s, expected %s", item.LineTotal, want)
			}
		}

		rs.check(RuleOrderTotal)
		if want := o.CalculateTotal(); !want.Equal(o.TotalAmount) {
			rs.fail(RuleOrderTotal, "orders", o.OrderID, "total %s, expected %s", o.TotalAmount, want)
		}

		rs.check(RuleShippingDate)
		switch {
		case o.Status.HasShipped() && o.ShippingDate == nil:
			rs.fail(RuleShippingDate, "orders", o.OrderID, "%s order has no shipping date", o.Status)
		case !o.Status.HasShipped() && o.ShippingDate != nil:
			rs.fail(RuleShippingDate, "orders", o.OrderID, "%s order has a shipping date", o.Status)
		case o.ShippingDate != nil && !withinDays(o.OrderDate, *o.ShippingDate, 1, 3):
			rs.fail(RuleShippingDate, "orders", o.OrderID, "shipped %s after ordering", o.ShippingDate.Sub(o.OrderDate))
		}

		rs.check(RuleDeliveryDate)
		switch {
		case o.Status.HasDelivered() && o.DeliveryDate == nil:
			rs.fail(RuleDeliveryDate, "orders", o.OrderID, "%s order has no delivery date", o.Status)
		case !o.Status.HasDelivered() && o.DeliveryDate != nil:
			rs.fail(RuleDeliveryDate, "orders", o.OrderID, "%s order has a delivery date", o.Status)
		case o.DeliveryDate != nil && o.ShippingDate != nil && !withinDays(*o.ShippingDate, *o.DeliveryDate, 2, 7):
			rs.fail(RuleDeliveryDate, "orders", o.OrderID, "delivered %s after shipping", o.DeliveryDate.Sub(*o.ShippingDate))
		}
	}
}

func (v *Verifier) checkReviews(rs *ruleSet, reviews []models.Review, parents map[string]idSet) {
	for _, r := range reviews {
		rs.check(RuleReviewRating)
		if r.Rating < 1 || r.Rating > 5 {
			rs.fail(RuleReviewRating, "reviews", r.ReviewID, "rating %d", r.Rating)
		}

		rs.check(RuleForeignKeys)
		if !parents["products"].has(r.ProductID) {
			rs.fail(RuleForeignKeys, "reviews", r.ReviewID, "unknown product %d", r.ProductID)
		}
		rs.check(RuleForeignKeys)
		if !parents["customers"].has(r.CustomerID) {
			rs.fail(RuleForeignKeys, "reviews", r.ReviewID, "unknown customer %d", r.CustomerID)
		}
	}
}

func (v *Verifier) checkTickets(rs *ruleSet, tickets []models.SupportTicket, parents map[string]idSet) {
	for _, t := range tickets {
		rs.check(RuleForeignKeys)
		if !parents["customers"].has(t.CustomerID) {
			rs.fail(RuleForeignKeys, "customer_support_tickets", t.TicketID, "unknown customer %d", t.CustomerID)
		}

		rs.check(RuleTicketResolution)
		switch {
		case t.Status.IsResolved() && t.ResolvedDate == nil:
			rs.fail(RuleTicketResolution, "customer_support_tickets", t.TicketID, "%s ticket has no resolved date", t.Status)
		case !t.Status.IsResolved() && t.ResolvedDate != nil:
			rs.fail(RuleTicketResolution, "customer_support_tickets", t.TicketID, "%s ticket has a resolved date", t.Status)
		case t.ResolvedDate != nil && !withinDays(t.CreatedDate, *t.ResolvedDate, 1, 10):
			rs.fail(RuleTicketResolution, "customer_support_tickets", t.TicketID, "resolved %s after creation", t.ResolvedDate.Sub(t.CreatedDate))
		}
	}
}

// withinDays reports whether to falls between minDays and maxDays calendar
// days after from.
func withinDays(from, to time.Time, minDays, maxDays int) bool {
	diff := to.Sub(from)
	day := 24 * time.Hour
	return diff >= time.Duration(minDays)*day-dayTolerance && diff <= time.Duration(maxDays)*day+dayTolerance
}
