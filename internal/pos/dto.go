package pos

import "github.com/shopspring/decimal"

// StartSaleRequest opens a new PENDING sale.
type StartSaleRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	TerminalID *string `json:"terminal_id,omitempty" validate:"omitempty,max=64"`
}

// AddItemRequest adds quantity of a product to an open sale. Adding a
// product already on the sale merges into the existing line.
type AddItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int64           `json:"quantity" validate:"required,gte=1"`
	Discount  decimal.Decimal `json:"discount"`
}

// CompleteSaleRequest settles an open sale.
type CompleteSaleRequest struct {
	PaymentMethod    PaymentMethod   `json:"payment_method" validate:"required"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	PaymentReference *string         `json:"payment_reference,omitempty" validate:"omitempty,max=128"`
}

// CompleteSaleResult is returned by a successful completion.
type CompleteSaleResult struct {
	Sale    *Sale           `json:"sale"`
	Payment *Payment        `json:"payment"`
	Change  decimal.Decimal `json:"change"`
}
