package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// HasShipped reports whether an order in this status carries a shipping date.
func (s OrderStatus) HasShipped() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

// HasDelivered reports whether an order in this status carries a delivery date.
func (s OrderStatus) HasDelivered() bool {
	return s == OrderStatusDelivered
}

// PaymentMethod represents how an order was paid
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
	PaymentMethodDebitCard  PaymentMethod = "Debit Card"
	PaymentMethodPayPal     PaymentMethod = "PayPal"
)

// Order represents a customer order. TotalAmount is always derived from the
// items, see CalculateTotal.
type Order struct {
	OrderID        uint            `json:"orderId" gorm:"column:order_id;primaryKey;autoIncrement"`
	CustomerID     uint            `json:"customerId" gorm:"column:customer_id;not null;index"`
	OrderDate      time.Time       `json:"orderDate" gorm:"column:order_date;not null"`
	Status         OrderStatus     `json:"status" gorm:"column:status;type:varchar(50);not null"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:numeric(10,2);not null"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"column:discount_amount;type:numeric(10,2)"`
	ShippingCost   decimal.Decimal `json:"shippingCost" gorm:"column:shipping_cost;type:numeric(10,2)"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" gorm:"column:payment_method;type:varchar(50)"`
	ShippingDate   *time.Time      `json:"shippingDate,omitempty" gorm:"column:shipping_date"`
	DeliveryDate   *time.Time      `json:"deliveryDate,omitempty" gorm:"column:delivery_date"`

	// Relationships
	Customer *Customer  `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:CustomerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;references:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem represents one product line of an order
type OrderItem struct {
	OrderItemID     uint            `json:"orderItemId" gorm:"column:order_item_id;primaryKey;autoIncrement"`
	OrderID         uint            `json:"orderId" gorm:"column:order_id;not null;index"`
	ProductID       uint            `json:"productId" gorm:"column:product_id;not null;index"`
	Quantity        int             `json:"quantity" gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `json:"unitPrice" gorm:"column:unit_price;type:numeric(10,2);not null"`
	DiscountPercent decimal.Decimal `json:"discountPercent" gorm:"column:discount_percent;type:numeric(5,2)"`
	LineTotal       decimal.Decimal `json:"lineTotal" gorm:"column:line_total;type:numeric(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ProductID"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

var hundred = decimal.NewFromInt(100)

// CalculateLineTotal returns round(unitPrice * quantity * (1 - discountPercent/100), 2).
func CalculateLineTotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(factor).Round(2)
}

// CalculateTotal returns round(sum(line totals) + shipping - discount, 2).
func (o *Order) CalculateTotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	return subtotal.Add(o.ShippingCost).Sub(o.DiscountAmount).Round(2)
}
