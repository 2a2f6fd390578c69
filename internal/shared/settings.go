package shared

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingLowStockThreshold controls the stock level at or below which a
// stock_alert event is broadcast after a completed sale.
const SettingLowStockThreshold = "pos.low_stock_threshold"

// Settings reads configuration values from the settings table. Missing keys
// fall back to the supplied default so the POS core never hard-fails on an
// unseeded settings row.
type Settings struct {
	pool *pgxpool.Pool
}

// NewSettings constructs the settings reader.
func NewSettings(pool *pgxpool.Pool) *Settings {
	return &Settings{pool: pool}
}

// Get returns the raw value for key, or fallback when the key is absent.
func (s *Settings) Get(ctx context.Context, key, fallback string) (string, error) {
	if s == nil || s.pool == nil {
		return fallback, nil
	}
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fallback, nil
		}
		return fallback, err
	}
	return value, nil
}

// GetInt returns the value for key parsed as int64, or fallback.
func (s *Settings) GetInt(ctx context.Context, key string, fallback int64) int64 {
	raw, err := s.Get(ctx, key, strconv.FormatInt(fallback, 10))
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
