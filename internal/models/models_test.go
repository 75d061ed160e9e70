package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestCalculateLineTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity int
		discount string
		want     string
	}{
		{"no discount", "19.99", 3, "0", "59.97"},
		{"ten percent", "100.00", 1, "10", "90.00"},
		{"rounds half away from zero", "10.01", 1, "50", "5.01"},
		{"fractional percent", "45.50", 2, "12.75", "79.40"},
		{"full discount", "12.00", 2, "100", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLineTotal(dec(t, tt.price), tt.quantity, dec(t, tt.discount))
			assert.True(t, dec(t, tt.want).Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestOrderCalculateTotal(t *testing.T) {
	order := Order{
		ShippingCost:   dec(t, "7.45"),
		DiscountAmount: dec(t, "12.10"),
		Items: []OrderItem{
			{LineTotal: dec(t, "59.97")},
			{LineTotal: dec(t, "90.00")},
			{LineTotal: dec(t, "0.01")},
		},
	}

	assert.True(t, dec(t, "145.33").Equal(order.CalculateTotal()))
}

func TestOrderCalculateTotalWithoutItems(t *testing.T) {
	order := Order{ShippingCost: dec(t, "5.00")}

	assert.True(t, dec(t, "5.00").Equal(order.CalculateTotal()))
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, OrderStatusProcessing.HasShipped())
	assert.True(t, OrderStatusShipped.HasShipped())
	assert.True(t, OrderStatusDelivered.HasShipped())
	assert.False(t, OrderStatusShipped.HasDelivered())
	assert.True(t, OrderStatusDelivered.HasDelivered())

	assert.False(t, TicketStatusOpen.IsResolved())
	assert.False(t, TicketStatusInProgress.IsResolved())
	assert.True(t, TicketStatusResolved.IsResolved())
	assert.True(t, TicketStatusClosed.IsResolved())
}

func TestAllMatchesTables(t *testing.T) {
	type tabler interface{ TableName() string }

	all := All()
	require.Len(t, all, len(Tables))
	for i, m := range all {
		assert.Equal(t, Tables[i], m.(tabler).TableName())
	}
}
