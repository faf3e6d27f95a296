package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/order"
	"github.com/velora-shop/storefront-api/internal/domain/report"
)

const (
	paidRevenueSinceSQL = `SELECT COALESCE(SUM(final_amount), 0) FROM orders
		WHERE payment_status = 'paid' AND created_at >= $1`

	orderCountSQL = `SELECT count(*) FROM orders`

	orderCountSinceSQL = `SELECT count(*) FROM orders WHERE created_at >= $1`

	customerCountSQL = `SELECT count(*) FROM users`

	recentOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1`

	paidOrdersBetweenSQL = `SELECT created_at, final_amount FROM orders
		WHERE payment_status = 'paid' AND created_at >= $1 AND created_at < $2`
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements the dashboard aggregate queries.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// PaidRevenueSince sums final_amount over paid orders created at or after
// since. A zero since covers the full lifetime.
func (r *ReportRepository) PaidRevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, paidRevenueSinceSQL, since).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing paid revenue: %w", err)
	}
	return sum, nil
}

// OrderCount returns the lifetime order count.
func (r *ReportRepository) OrderCount(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, orderCountSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return n, nil
}

// OrderCountSince returns the number of orders created at or after since.
func (r *ReportRepository) OrderCountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, orderCountSinceSQL, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders since %s: %w", since, err)
	}
	return n, nil
}

// CustomerCount returns the total number of user accounts.
func (r *ReportRepository) CustomerCount(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, customerCountSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting customers: %w", err)
	}
	return n, nil
}

// RecentOrders returns the most recent order headers.
func (r *ReportRepository) RecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, recentOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// PaidOrders returns the creation instant and revenue of every paid order
// with created_at in [from, until). Grouping by calendar day is left to the
// caller so it can pick the timezone.
func (r *ReportRepository) PaidOrders(ctx context.Context, from, until time.Time) ([]report.PaidOrder, error) {
	rows, err := r.pool.Query(ctx, paidOrdersBetweenSQL, from, until)
	if err != nil {
		return nil, fmt.Errorf("listing paid orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.PaidOrder, error) {
		var p report.PaidOrder
		err := row.Scan(&p.CreatedAt, &p.Amount)
		return p, err
	})
}
