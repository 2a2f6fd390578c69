package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is the persisted lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
)

// PaymentStatus mirrors SaleStatus for the POS core.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// PaymentMethod enumerates accepted tender types.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCredit       PaymentMethod = "CREDIT"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobileMoney, PaymentMethodCheque, PaymentMethodCredit:
		return true
	}
	return false
}

// Sale is the order-in-progress (or completed) aggregate. Totals are always
// recomputed from the items, never accumulated incrementally. A COMPLETED
// sale is immutable.
type Sale struct {
	ID            int64          `json:"id"`
	Number        string         `json:"number"`
	UserID        int64          `json:"user_id"`
	CustomerID    *int64         `json:"customer_id,omitempty"`
	TerminalID    *string        `json:"terminal_id,omitempty"`
	Status        SaleStatus     `json:"status"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	Items         []SaleItem     `json:"items"`
	Payments      []Payment      `json:"payments,omitempty"`
}

// SaleItem is one product line within a sale. Unit price and tax rate are
// snapshotted from the product when the line is first added; later catalog
// changes never alter an open sale.
type SaleItem struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Payment records tender against a sale.
type Payment struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Status    string          `json:"status"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
