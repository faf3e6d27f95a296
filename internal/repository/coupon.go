package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT id, code, discount_type, value, min_order_amount,
		max_discount, usage_limit, used_count, valid_from, valid_until, active
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	upsertCouponSQL = `INSERT INTO coupons (code, discount_type, value, min_order_amount, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			min_order_amount = EXCLUDED.min_order_amount,
			active = TRUE`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by its code (case-insensitive).
// Returns coupon.ErrInvalidCoupon when no matching coupon exists. The active
// flag is returned as-is; eligibility is the validator's concern.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCouponRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &rule, nil
}

// Upsert inserts or refreshes a coupon rule. Used by the ingest tooling.
func (r *CouponRepository) Upsert(ctx context.Context, code string, discountType coupon.DiscountType, value, minOrderAmount decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL, code, string(discountType), value, minOrderAmount)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", code, err)
	}
	return nil
}

func scanCouponRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var (
		rule         coupon.Rule
		discountType string
		maxDiscount  *decimal.Decimal
		usageLimit   *int32
		validFrom    *time.Time
		validUntil   *time.Time
	)
	err := row.Scan(
		&rule.ID, &rule.Code, &discountType, &rule.Value, &rule.MinOrderAmount,
		&maxDiscount, &usageLimit, &rule.UsedCount, &validFrom, &validUntil, &rule.Active,
	)
	rule.DiscountType = coupon.DiscountType(discountType)
	rule.MaxDiscount = maxDiscount
	if usageLimit != nil {
		limit := int(*usageLimit)
		rule.UsageLimit = &limit
	}
	rule.ValidFrom = validFrom
	rule.ValidUntil = validUntil
	return rule, err
}
