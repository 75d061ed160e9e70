package services

import (
	"context"
	"fmt"

	"ecommerce-datagen/internal/fakedata"
	"ecommerce-datagen/internal/models"

	"github.com/shopspring/decimal"
)

// Orders are weighted 3:1:1 towards delivered.
var orderStatuses = []models.OrderStatus{
	models.OrderStatusDelivered,
	models.OrderStatusDelivered,
	models.OrderStatusDelivered,
	models.OrderStatusShipped,
	models.OrderStatusProcessing,
}

var paymentMethods = []models.PaymentMethod{
	models.PaymentMethodCreditCard,
	models.PaymentMethodDebitCard,
	models.PaymentMethodPayPal,
}

const (
	maxItemsPerOrder    = 4
	orderDiscountChance = 0.2
	itemDiscountChance  = 0.15
)

// GenerateOrders inserts count orders with one to four items each and returns
// the number of orders and items inserted. Unit prices are the products'
// stored prices and every total is computed from the items it is saved with.
func (g *Generator) GenerateOrders(ctx context.Context, customerIDs, productIDs []uint, count int) (int64, int64, error) {
	if err := requireParents(count, customerIDs, productIDs); err != nil {
		return 0, 0, fmt.Errorf("orders need customers and products: %w", err)
	}
	log := g.stageLogger("orders")
	log.Infof("Creating %d orders...", count)
	if count <= 0 {
		log.Info("[DONE] 0 orders created")
		return 0, 0, nil
	}

	prices, err := g.repo.ProductPrices(ctx, productIDs)
	if err != nil {
		return 0, 0, err
	}

	var orderCount, itemCount int64
	batch := make([]models.Order, 0, orderProgressEvery)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		ids, err := g.repo.CreateOrders(ctx, batch)
		if err != nil {
			return err
		}
		orderCount += int64(len(ids))
		for i := range batch {
			itemCount += int64(len(batch[i].Items))
		}
		batch = batch[:0]
		return nil
	}

	for i := 0; i < count; i++ {
		order, err := g.buildOrder(customerIDs, productIDs, prices)
		if err != nil {
			return orderCount, itemCount, err
		}
		batch = append(batch, order)

		if (i+1)%orderProgressEvery == 0 {
			if err := flush(); err != nil {
				return orderCount, itemCount, err
			}
			log.Infof("  Progress: %d/%d orders...", i+1, count)
		}
	}
	if err := flush(); err != nil {
		return orderCount, itemCount, err
	}

	log.WithField("items", itemCount).Infof("[DONE] %d orders created", orderCount)
	return orderCount, itemCount, nil
}

// buildOrder assembles one order with its items and derived total.
func (g *Generator) buildOrder(customerIDs, productIDs []uint, prices map[uint]decimal.Decimal) (models.Order, error) {
	now := g.clock()
	orderDate := g.between(now.AddDate(-1, 0, 0), now)
	status := fakedata.Pick(g.fake, orderStatuses)

	order := models.Order{
		CustomerID:     fakedata.Pick(g.fake, customerIDs),
		OrderDate:      orderDate,
		Status:         status,
		DiscountAmount: decimal.Zero,
		ShippingCost:   g.fake.Amount(5, 20),
		PaymentMethod:  fakedata.Pick(g.fake, paymentMethods),
	}
	if status.HasShipped() {
		shipped := orderDate.AddDate(0, 0, g.fake.IntRange(1, 3))
		order.ShippingDate = &shipped
		if status.HasDelivered() {
			delivered := shipped.AddDate(0, 0, g.fake.IntRange(2, 7))
			order.DeliveryDate = &delivered
		}
	}
	if g.fake.Chance(orderDiscountChance) {
		order.DiscountAmount = g.fake.Amount(0, 30)
	}

	selected := fakedata.Sample(g.fake, productIDs, g.fake.IntRange(1, maxItemsPerOrder))
	order.Items = make([]models.OrderItem, 0, len(selected))
	for _, productID := range selected {
		price, ok := prices[productID]
		if !ok {
			return models.Order{}, fmt.Errorf("no price found for product %d", productID)
		}
		quantity := g.fake.IntRange(1, 3)
		discountPercent := decimal.Zero
		if g.fake.Chance(itemDiscountChance) {
			discountPercent = g.fake.Amount(0.01, 20)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       productID,
			Quantity:        quantity,
			UnitPrice:       price,
			DiscountPercent: discountPercent,
			LineTotal:       models.CalculateLineTotal(price, quantity, discountPercent),
		})
	}
	order.TotalAmount = order.CalculateTotal()
	return order, nil
}
