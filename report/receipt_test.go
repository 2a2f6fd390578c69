package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/pos"
)

func TestReceiptHTML(t *testing.T) {
	completed := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	terminal := "till-1"
	sale := &pos.Sale{
		Number:      "POS-000042",
		TerminalID:  &terminal,
		Status:      pos.SaleStatusCompleted,
		Subtotal:    decimal.RequireFromString("30.00"),
		TaxTotal:    decimal.RequireFromString("3.00"),
		Total:       decimal.RequireFromString("33.00"),
		CompletedAt: &completed,
		Items: []pos.SaleItem{
			{ProductName: "Espresso Beans", Quantity: 3, LineTotal: decimal.RequireFromString("33.00")},
		},
		Payments: []pos.Payment{
			{Amount: decimal.RequireFromString("40.00"), Method: pos.PaymentMethodCash},
		},
	}

	html, err := ReceiptHTML(sale)
	require.NoError(t, err)
	require.Contains(t, html, "POS-000042")
	require.Contains(t, html, "3 x Espresso Beans")
	require.Contains(t, html, "33.00")
	require.Contains(t, html, "CASH")
	require.Contains(t, html, "7.00")
	require.Contains(t, html, "till-1")
	require.Contains(t, html, "2026-08-31 14:30")
}

func TestReceiptHTMLRequiresSale(t *testing.T) {
	_, err := ReceiptHTML(nil)
	require.Error(t, err)
}
