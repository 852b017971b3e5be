package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/medika-erp/medika-erp/internal/dashboard"
)

// DashboardWarmupJob rebuilds the KPI snapshot cache so the first morning
// request is served warm.
type DashboardWarmupJob struct {
	Dashboard *dashboard.Service
	Logger    *slog.Logger
}

func NewDashboardWarmupJob(svc *dashboard.Service, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: svc, Logger: logger}
}

// Handle executes the warm-up.
func (j *DashboardWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	if err := j.Dashboard.Warm(ctx); err != nil {
		j.Logger.Error("dashboard warmup", slog.Any("error", err))
		return err
	}
	j.Logger.Info("dashboard warmup finished")
	return nil
}
