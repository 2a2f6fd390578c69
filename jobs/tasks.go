package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDashboardRefresh recomputes and re-broadcasts the sales dashboard.
	TaskTypeDashboardRefresh = "dashboard:refresh"
	// TaskTypeReceiptRender renders the receipt PDF for a completed sale.
	TaskTypeReceiptRender = "receipt:render"
)

// ReceiptRenderPayload names the sale whose receipt should be rendered.
type ReceiptRenderPayload struct {
	SaleID int64 `json:"sale_id"`
}

// NewDashboardRefreshTask constructs the dashboard refresh task. It carries
// no payload; the handler always rebuilds the standard windows.
func NewDashboardRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeDashboardRefresh, nil)
}

// NewReceiptRenderTask constructs a receipt render task for one sale.
func NewReceiptRenderTask(saleID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReceiptRenderPayload{SaleID: saleID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptRender, data), nil
}
