package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tradewind-erp/tradewind/internal/analytics"
	"github.com/tradewind-erp/tradewind/internal/broadcast"
	"github.com/tradewind-erp/tradewind/internal/shared"
)

// Windows warmed after every refresh; the dashboard defaults to the first.
var refreshWindows = []int{7, 30}

// DashboardRefreshJob invalidates the analytics cache after sales changed,
// warms the standard windows and notifies dashboard subscribers.
type DashboardRefreshJob struct {
	Analytics *analytics.Service
	Publisher broadcast.Publisher
	Logger    *slog.Logger
	Metrics   *Metrics
}

// NewDashboardRefreshJob wires dependencies for the refresh handler.
func NewDashboardRefreshJob(analyticsSvc *analytics.Service, publisher broadcast.Publisher, logger *slog.Logger, metrics *Metrics) *DashboardRefreshJob {
	return &DashboardRefreshJob{
		Analytics: analyticsSvc,
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
	}
}

// Handle processes dashboard refresh tasks.
func (j *DashboardRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("dashboard refresh: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeDashboardRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger()

	if err := j.Analytics.Invalidate(ctx); err != nil {
		resultErr = err
		logger.Error("invalidate dashboard cache", slog.Any("error", err))
		return resultErr
	}
	for _, days := range refreshWindows {
		if _, err := j.Analytics.SalesOverview(ctx, days); err != nil {
			resultErr = err
			logger.Error("warm dashboard window", slog.Int("days", days), slog.Any("error", err))
			return resultErr
		}
	}

	if j.Publisher != nil {
		event := broadcast.NewEvent(broadcast.EventDashboardSync, map[string]any{"windows": refreshWindows})
		for _, topic := range []string{
			broadcast.RoleTopic(shared.RoleManager),
			broadcast.RoleTopic(shared.RoleOwner),
		} {
			if err := j.Publisher.Publish(ctx, topic, event); err != nil {
				logger.Warn("publish dashboard sync", slog.String("topic", topic), slog.Any("error", err))
			}
		}
	}

	logger.Info("dashboard refreshed", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *DashboardRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
