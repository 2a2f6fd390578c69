package analytics

import "github.com/shopspring/decimal"

// DailySalesPoint is one day in the sales trend series.
type DailySalesPoint struct {
	Day      string          `json:"day"`
	Sales    int64           `json:"sales"`
	Revenue  decimal.Decimal `json:"revenue"`
	TaxTotal decimal.Decimal `json:"tax_total"`
}

// TopProduct ranks a product by quantity sold over the window.
type TopProduct struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// PaymentSlice breaks revenue down by tender type.
type PaymentSlice struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// LowStockEntry flags a product at or below the reorder threshold.
type LowStockEntry struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Stock     int64  `json:"stock"`
}

// SalesOverview is the dashboard payload for one lookback window.
type SalesOverview struct {
	Days        int               `json:"days"`
	TotalSales  int64             `json:"total_sales"`
	Revenue     decimal.Decimal   `json:"revenue"`
	Daily       []DailySalesPoint `json:"daily"`
	TopProducts []TopProduct      `json:"top_products"`
	Payments    []PaymentSlice    `json:"payments"`
	LowStock    []LowStockEntry   `json:"low_stock"`
}
