package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/velora-shop/storefront-api/internal/domain/product"
)

const (
	recentOrderLimit = 5
	chartDays        = 7
)

// Service computes the admin dashboard. Every request recomputes from
// scratch; the independent aggregate queries run concurrently.
type Service struct {
	orders   Repository
	products product.Repository

	now func() time.Time
}

// NewService creates a dashboard Service.
func NewService(orders Repository, products product.Repository) *Service {
	return &Service{orders: orders, products: products, now: time.Now}
}

// Dashboard assembles the full dashboard payload. Time windows use the
// local calendar day: today starts at 00:00:00 local time, the month window
// at the first of the current month.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	startOfToday := startOfDay(now)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var d Dashboard

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Stats.TotalSales, err = s.orders.PaidRevenueSince(ctx, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TodaySales, err = s.orders.PaidRevenueSince(ctx, startOfToday)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.MonthlySales, err = s.orders.PaidRevenueSince(ctx, startOfMonth)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalOrders, err = s.orders.OrderCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TodayOrders, err = s.orders.OrderCountSince(ctx, startOfToday)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalCustomers, err = s.orders.CustomerCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.TotalProducts, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Stats.LowStockProducts, err = s.products.CountLowStock(ctx, LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.orders.RecentOrders(ctx, recentOrderLimit)
		return err
	})
	g.Go(func() (err error) {
		d.SalesChart, err = s.salesChart(ctx, startOfToday)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard aggregation: %w", err)
	}
	return &d, nil
}

// salesChart builds the trailing daily revenue series: exactly chartDays
// entries in chronological order, ending with today. Days without paid
// orders are filled with zero. Orders are bucketed here by the calendar day
// in the application's timezone; the database only filters by instant, so a
// session timezone differing from the app's cannot shift an order into the
// wrong day.
func (s *Service) salesChart(ctx context.Context, startOfToday time.Time) ([]DailySales, error) {
	from := startOfToday.AddDate(0, 0, -(chartDays - 1))
	until := startOfToday.AddDate(0, 0, 1)
	loc := startOfToday.Location()

	rows, err := s.orders.PaidOrders(ctx, from, until)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal, chartDays)
	for _, r := range rows {
		key := startOfDay(r.CreatedAt.In(loc)).Format(time.DateOnly)
		totals[key] = totals[key].Add(r.Amount)
	}

	chart := make([]DailySales, 0, chartDays)
	for i := range chartDays {
		day := from.AddDate(0, 0, i)
		key := day.Format(time.DateOnly)
		entry := DailySales{Date: key}
		if sum, ok := totals[key]; ok {
			entry.Sales = sum
		}
		chart = append(chart, entry)
	}
	return chart, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
