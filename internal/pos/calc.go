package pos

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineNet returns quantity × unit price − discount.
func LineNet(unitPrice decimal.Decimal, quantity int64, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Sub(discount)
}

// LineTax computes tax on a net amount, rounded half-even to 2 decimal
// places. The same rounding applies everywhere totals are recomputed so that
// recomputing an unchanged sale is idempotent.
func LineTax(net, taxRate decimal.Decimal) decimal.Decimal {
	return net.Mul(taxRate).Div(hundred).RoundBank(2)
}

// LineTotal returns net + tax for one line.
func LineTotal(unitPrice decimal.Decimal, quantity int64, discount, taxRate decimal.Decimal) decimal.Decimal {
	net := LineNet(unitPrice, quantity, discount)
	return net.Add(LineTax(net, taxRate))
}

// SaleTotals recomputes subtotal, tax total and grand total from scratch by
// summing the current lines. Callers must pass the items as read inside the
// same transaction that mutated them.
func SaleTotals(items []SaleItem) (subtotal, taxTotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	taxTotal = decimal.Zero
	for _, item := range items {
		net := LineNet(item.UnitPrice, item.Quantity, item.Discount)
		subtotal = subtotal.Add(net)
		taxTotal = taxTotal.Add(LineTax(net, item.TaxRate))
	}
	total = subtotal.Add(taxTotal)
	return subtotal, taxTotal, total
}
