package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/order"
)

// LowStockThreshold is the stock level below which a product is flagged on
// the dashboard.
const LowStockThreshold = 10

// Stats is the scalar portion of the dashboard.
type Stats struct {
	TotalSales       decimal.Decimal `json:"totalSales"`
	TodaySales       decimal.Decimal `json:"todaySales"`
	MonthlySales     decimal.Decimal `json:"monthlySales"`
	TotalOrders      int             `json:"totalOrders"`
	TodayOrders      int             `json:"todayOrders"`
	TotalCustomers   int             `json:"totalCustomers"`
	TotalProducts    int             `json:"totalProducts"`
	LowStockProducts int             `json:"lowStockProducts"`
}

// DailySales is one day of the trailing revenue series.
type DailySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// Dashboard is the full admin dashboard payload.
type Dashboard struct {
	Stats        Stats         `json:"stats"`
	RecentOrders []order.Order `json:"recentOrders"`
	SalesChart   []DailySales  `json:"salesChart"`
}

// PaidOrder is one paid order's creation instant and revenue as returned by
// storage. Calendar bucketing happens in the service so it follows the
// application's timezone, not the database session's.
type PaidOrder struct {
	CreatedAt time.Time
	Amount    decimal.Decimal
}

// Repository provides the aggregate queries backing the dashboard. Revenue
// figures sum final_amount over orders with payment_status = paid.
type Repository interface {
	PaidRevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	OrderCount(ctx context.Context) (int, error)
	OrderCountSince(ctx context.Context, since time.Time) (int, error)
	CustomerCount(ctx context.Context) (int, error)
	RecentOrders(ctx context.Context, limit int) ([]order.Order, error)
	PaidOrders(ctx context.Context, from, until time.Time) ([]PaidOrder, error)
}
