package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tradewind-erp/tradewind/internal/catalog"
	"github.com/tradewind-erp/tradewind/internal/ledger"
	"github.com/tradewind-erp/tradewind/internal/observability"
	"github.com/tradewind-erp/tradewind/internal/pos"
)

func TestRouterHealthAndMetrics(t *testing.T) {
	logger := NewLogger(nil)
	router := NewRouter(RouterParams{
		Logger:         logger,
		POSHandler:     pos.NewHandler(logger, nil),
		CatalogHandler: catalog.NewHandler(logger, nil, nil),
		LedgerHandler:  ledger.NewHandler(logger, nil),
		Metrics:        observability.NewMetrics(),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Fatalf("healthz body = %s", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}
