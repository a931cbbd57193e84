package notify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/order"
)

func testOrder() *order.Order {
	return &order.Order{
		ID:            "0d9b48f2-5f5e-4a1a-9c2b-7f3a21e4c890",
		UserID:        "u1",
		Address:       "12 Main St",
		PaymentMethod: "COD",
		TotalAmount:   decimal.RequireFromString("250.00"),
		Items: []order.Item{
			{ProductID: "p1", Name: "Widget", Quantity: 3, Price: decimal.RequireFromString("50.00")},
			{ProductID: "p2", Name: "Gadget", Quantity: 1, Price: decimal.RequireFromString("100.00")},
		},
	}
}

func TestInvoiceSubject(t *testing.T) {
	assert.Equal(t, "Your Order Invoice #e4c890", InvoiceSubject(testOrder()))
}

func TestRenderInvoice(t *testing.T) {
	body, err := RenderInvoice(testOrder(), "Ada")
	require.NoError(t, err)

	assert.Contains(t, body, "Order Invoice #e4c890")
	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "12 Main St")
	assert.Contains(t, body, "250.00")
	assert.Contains(t, body, "Widget")
	// Line totals are quantity times the captured unit price.
	assert.Contains(t, body, "150.00")
}

func TestRenderInvoice_EscapesHTML(t *testing.T) {
	o := testOrder()
	o.Items[0].Name = "<script>alert(1)</script>"

	body, err := RenderInvoice(o, "Ada")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
