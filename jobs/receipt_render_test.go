package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tradewind-erp/tradewind/internal/pos"
)

type fakeSaleLoader struct {
	sale *pos.Sale
	err  error
}

func (f *fakeSaleLoader) GetSale(ctx context.Context, saleID int64) (*pos.Sale, error) {
	return f.sale, f.err
}

type fakeRenderer struct {
	output []byte
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	return f.output, nil
}

func completedSale() *pos.Sale {
	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	return &pos.Sale{
		ID:          1,
		Number:      "POS-000001",
		Status:      pos.SaleStatusCompleted,
		Subtotal:    decimal.RequireFromString("10.00"),
		TaxTotal:    decimal.RequireFromString("1.00"),
		Total:       decimal.RequireFromString("11.00"),
		CompletedAt: &at,
		Items: []pos.SaleItem{
			{ProductName: "Widget", Quantity: 1, LineTotal: decimal.RequireFromString("11.00")},
		},
	}
}

func renderTask(t *testing.T, saleID int64) *asynq.Task {
	t.Helper()
	task, err := NewReceiptRenderTask(saleID)
	require.NoError(t, err)
	return task
}

func TestReceiptRenderWritesPDF(t *testing.T) {
	dir := t.TempDir()
	job := NewReceiptRenderJob(&fakeSaleLoader{sale: completedSale()}, &fakeRenderer{output: []byte("%PDF-fake")}, dir, nil, nil)

	require.NoError(t, job.Handle(context.Background(), renderTask(t, 1)))

	data, err := os.ReadFile(filepath.Join(dir, "receipt-POS-000001.pdf"))
	require.NoError(t, err)
	require.Equal(t, "%PDF-fake", string(data))
}

func TestReceiptRenderSkipsMissingSale(t *testing.T) {
	job := NewReceiptRenderJob(&fakeSaleLoader{err: pos.ErrSaleNotFound}, &fakeRenderer{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), renderTask(t, 999))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReceiptRenderSkipsOpenSale(t *testing.T) {
	sale := completedSale()
	sale.Status = pos.SaleStatusPending
	job := NewReceiptRenderJob(&fakeSaleLoader{sale: sale}, &fakeRenderer{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), renderTask(t, 1))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReceiptRenderSkipsMalformedPayload(t *testing.T) {
	job := NewReceiptRenderJob(&fakeSaleLoader{sale: completedSale()}, &fakeRenderer{}, t.TempDir(), nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskTypeReceiptRender, []byte("not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
