package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestLineTotals(t *testing.T) {
	price := dec(t, "10.00")
	taxRate := dec(t, "10")

	net := LineNet(price, 2, decimal.Zero)
	require.True(t, dec(t, "20.00").Equal(net), "net = %s", net)

	tax := LineTax(net, taxRate)
	require.True(t, dec(t, "2.00").Equal(tax), "tax = %s", tax)

	total := LineTotal(price, 2, decimal.Zero, taxRate)
	require.True(t, dec(t, "22.00").Equal(total), "total = %s", total)
}

func TestLineTotalWithDiscount(t *testing.T) {
	// 3 x 4.99 - 1.47 = 13.50 net; 7.5% tax = 1.0125 -> 1.01 (half even).
	total := LineTotal(dec(t, "4.99"), 3, dec(t, "1.47"), dec(t, "7.5"))
	require.True(t, dec(t, "14.51").Equal(total), "total = %s", total)
}

func TestTaxRoundsHalfEven(t *testing.T) {
	cases := []struct {
		net, rate, want string
	}{
		{"0.25", "10", "0.02"},  // 0.025 rounds to even 0.02
		{"0.35", "10", "0.04"},  // 0.035 rounds to even 0.04
		{"0.45", "10", "0.04"},  // 0.045 rounds to even 0.04
		{"12.34", "18", "2.22"}, // 2.2212
	}
	for _, tc := range cases {
		got := LineTax(dec(t, tc.net), dec(t, tc.rate))
		require.True(t, dec(t, tc.want).Equal(got), "tax(%s, %s%%) = %s, want %s", tc.net, tc.rate, got, tc.want)
	}
}

func TestSaleTotalsRecomputeIsIdempotent(t *testing.T) {
	items := []SaleItem{
		{Quantity: 3, UnitPrice: dec(t, "10.00"), TaxRate: dec(t, "10"), Discount: decimal.Zero},
		{Quantity: 2, UnitPrice: dec(t, "4.99"), TaxRate: dec(t, "7.5"), Discount: dec(t, "0.98")},
	}

	sub1, tax1, tot1 := SaleTotals(items)
	sub2, tax2, tot2 := SaleTotals(items)

	require.True(t, sub1.Equal(sub2))
	require.True(t, tax1.Equal(tax2))
	require.True(t, tot1.Equal(tot2))
	require.True(t, tot1.Equal(sub1.Add(tax1)))
}

func TestSaleTotalsEmpty(t *testing.T) {
	sub, tax, tot := SaleTotals(nil)
	require.True(t, sub.IsZero())
	require.True(t, tax.IsZero())
	require.True(t, tot.IsZero())
}
