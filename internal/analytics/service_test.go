package analytics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	calls atomic.Int64
}

func (s *stubRepo) DailySales(ctx context.Context, days int) ([]DailySalesPoint, error) {
	s.calls.Add(1)
	return []DailySalesPoint{
		{Day: "2026-08-30", Sales: 3, Revenue: decimal.RequireFromString("66.00"), TaxTotal: decimal.RequireFromString("6.00")},
		{Day: "2026-08-31", Sales: 2, Revenue: decimal.RequireFromString("20.00"), TaxTotal: decimal.RequireFromString("2.00")},
	}, nil
}

func (s *stubRepo) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	return []TopProduct{{ProductID: 1, Name: "Espresso Beans", Quantity: 9, Revenue: decimal.RequireFromString("86.00")}}, nil
}

func (s *stubRepo) PaymentBreakdown(ctx context.Context, days int) ([]PaymentSlice, error) {
	return []PaymentSlice{{Method: "CASH", Count: 5, Amount: decimal.RequireFromString("86.00")}}, nil
}

func (s *stubRepo) LowStock(ctx context.Context, threshold int64, limit int) ([]LowStockEntry, error) {
	return []LowStockEntry{{ProductID: 2, SKU: "SKU-2", Name: "Filters", Stock: 3}}, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestSalesOverviewAggregates(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t), 5)

	overview, err := svc.SalesOverview(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, overview.Days)
	require.EqualValues(t, 5, overview.TotalSales)
	require.True(t, decimal.RequireFromString("86.00").Equal(overview.Revenue), "revenue = %s", overview.Revenue)
	require.Len(t, overview.Daily, 2)
	require.Len(t, overview.TopProducts, 1)
	require.Len(t, overview.Payments, 1)
	require.Len(t, overview.LowStock, 1)
}

func TestSalesOverviewUsesCache(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t), 5)
	ctx := context.Background()

	_, err := svc.SalesOverview(ctx, 7)
	require.NoError(t, err)
	_, err = svc.SalesOverview(ctx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.calls.Load(), "second read must hit the cache")

	// A different window is a different key.
	_, err = svc.SalesOverview(ctx, 30)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.calls.Load())
}

func TestInvalidateBumpsVersion(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t), 5)
	ctx := context.Background()

	_, err := svc.SalesOverview(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx))

	_, err = svc.SalesOverview(ctx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.calls.Load(), "bumped version must miss the old key")
}

func TestSalesOverviewClampsWindow(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t), 5)

	overview, err := svc.SalesOverview(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, overview.Days)

	overview, err = svc.SalesOverview(context.Background(), 9999)
	require.NoError(t, err)
	require.Equal(t, 365, overview.Days)
}

func TestParseDays(t *testing.T) {
	require.Equal(t, 7, parseDays("", 7))
	require.Equal(t, 30, parseDays("30", 7))
	require.Equal(t, 7, parseDays("abc", 7))
	require.Equal(t, 7, parseDays("-3", 7))
}
