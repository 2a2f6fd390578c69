package analytics

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	topProductsLimit = 10
	lowStockLimit    = 20
)

// Service coordinates dashboard query execution with the cache layer. A
// singleflight group collapses concurrent cold-cache loads of the same
// window into one set of database queries.
type Service struct {
	repo              Repository
	cache             *Cache
	group             singleflight.Group
	lowStockThreshold int64
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache, lowStockThreshold int64) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}
	return &Service{repo: repo, cache: cache, lowStockThreshold: lowStockThreshold}
}

// SalesOverview returns the dashboard aggregate for the last days days.
func (s *Service) SalesOverview(ctx context.Context, days int) (*SalesOverview, error) {
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildOverview(ctx, days)
	}

	keyBase := keySalesOverview(days)
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return nil, err
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var overview SalesOverview
		if err := s.cache.FetchJSON(ctx, key, &overview, loader); err != nil {
			return nil, err
		}
		return &overview, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*SalesOverview), nil
}

func (s *Service) buildOverview(ctx context.Context, days int) (*SalesOverview, error) {
	daily, err := s.repo.DailySales(ctx, days)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, days, topProductsLimit)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentBreakdown(ctx, days)
	if err != nil {
		return nil, err
	}
	low, err := s.repo.LowStock(ctx, s.lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}

	overview := &SalesOverview{
		Days:        days,
		Revenue:     decimal.Zero,
		Daily:       daily,
		TopProducts: top,
		Payments:    payments,
		LowStock:    low,
	}
	for _, point := range daily {
		overview.TotalSales += point.Sales
		overview.Revenue = overview.Revenue.Add(point.Revenue)
	}
	return overview, nil
}

// Invalidate bumps the cache version after data changed underneath.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func parseDays(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}
