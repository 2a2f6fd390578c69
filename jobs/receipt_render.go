package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/tradewind-erp/tradewind/internal/pos"
	"github.com/tradewind-erp/tradewind/report"
)

// SaleLoader reads the sale projection to render.
type SaleLoader interface {
	GetSale(ctx context.Context, saleID int64) (*pos.Sale, error)
}

// PDFRenderer converts receipt markup into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// ReceiptRenderJob renders the printable receipt for a completed sale and
// stores it on disk for reprint.
type ReceiptRenderJob struct {
	Sales      SaleLoader
	Renderer   PDFRenderer
	StorageDir string
	Logger     *slog.Logger
	Metrics    *Metrics
}

// NewReceiptRenderJob wires dependencies for the receipt handler.
func NewReceiptRenderJob(sales SaleLoader, renderer PDFRenderer, storageDir string, logger *slog.Logger, metrics *Metrics) *ReceiptRenderJob {
	return &ReceiptRenderJob{
		Sales:      sales,
		Renderer:   renderer,
		StorageDir: storageDir,
		Logger:     logger,
		Metrics:    metrics,
	}
}

// Handle processes receipt render tasks.
func (j *ReceiptRenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sales == nil || j.Renderer == nil {
		return errors.New("receipt render: handler not configured")
	}
	var payload ReceiptRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.SaleID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeReceiptRender)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("sale_id", payload.SaleID))

	sale, err := j.Sales.GetSale(ctx, payload.SaleID)
	if err != nil {
		if errors.Is(err, pos.ErrSaleNotFound) {
			logger.Warn("receipt sale missing, dropping task")
			return asynq.SkipRetry
		}
		resultErr = err
		return resultErr
	}
	if sale.Status != pos.SaleStatusCompleted {
		logger.Warn("receipt requested for open sale, dropping task")
		return asynq.SkipRetry
	}

	html, err := report.ReceiptHTML(sale)
	if err != nil {
		resultErr = err
		return resultErr
	}
	pdf, err := j.Renderer.RenderHTML(ctx, html)
	if err != nil {
		resultErr = err
		logger.Error("render receipt pdf", slog.Any("error", err))
		return resultErr
	}

	if err := os.MkdirAll(j.StorageDir, 0o755); err != nil {
		resultErr = err
		return resultErr
	}
	path := filepath.Join(j.StorageDir, fmt.Sprintf("receipt-%s.pdf", sale.Number))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		resultErr = err
		return resultErr
	}

	logger.Info("receipt rendered", slog.String("path", path))
	return resultErr
}

func (j *ReceiptRenderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
