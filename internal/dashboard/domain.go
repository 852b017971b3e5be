package dashboard

import (
	"time"

	"github.com/medika-erp/medika-erp/internal/inventory"
)

// Snapshot is the back-office KPI view for the current month.
type Snapshot struct {
	MonthSales      float64              `json:"month_sales"`
	MonthPurchases  float64              `json:"month_purchases"`
	Receivables     float64              `json:"receivables"`
	Payables        float64              `json:"payables"`
	LowStockCount   int64                `json:"low_stock_count"`
	RecentMovements []inventory.Movement `json:"recent_movements"`
	GeneratedAt     time.Time            `json:"generated_at"`
}
