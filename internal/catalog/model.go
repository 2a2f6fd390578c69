package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Stock is derived from the stock
// ledger; the sale engine only updates it together with a ledger row inside
// the same transaction.
type Product struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Stock     int64           `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
