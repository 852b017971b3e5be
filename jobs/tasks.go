package jobs

import "github.com/hibiken/asynq"

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan records an audit row per product at or under its
	// minimum stock.
	TaskLowStockScan = "stock:lowscan"
	// TaskDashboardWarmup pre-fills the KPI snapshot cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// NewLowStockScanTask constructs the low-stock scan task. The scan takes no
// parameters; it always covers every active product.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewDashboardWarmupTask constructs the dashboard warm-up task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}
