package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-shop/storefront-api/internal/domain/order"
)

const (
	orderColumns = `id, order_number, user_id, total_amount, discount_amount, shipping_amount,
		tax_amount, final_amount, payment_status, order_status, payment_method,
		gateway_order_id, gateway_payment_id, shipping_address, billing_address,
		coupon_id, coupon_code, tracking_number, shipping_method, notes, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (order_number, user_id, total_amount, discount_amount,
		shipping_amount, tax_amount, final_amount, payment_status, order_status, payment_method,
		gateway_order_id, gateway_payment_id, shipping_address, billing_address,
		coupon_id, coupon_code, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderItemsSQL = `SELECT id, order_id, product_id, quantity, price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR order_status = $1) ORDER BY created_at DESC`

	countOrdersSQL = `SELECT count(*) FROM orders WHERE ($1 = '' OR order_status = $1)`

	updateOrderStatusSQL = `UPDATE orders SET order_status = $2, updated_at = now() WHERE id = $1`

	markOrderPaidSQL = `UPDATE orders SET payment_status = 'paid', gateway_payment_id = $2,
		order_status = CASE WHEN order_status = 'pending' THEN 'confirmed' ELSE order_status END,
		updated_at = now()
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all line items in one transaction.
// Address snapshots are serialized to JSON for the JSONB columns. On success
// the generated IDs and timestamps are written back onto o.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("marshaling billing address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, createOrderSQL,
		o.OrderNumber, o.UserID, o.TotalAmount, o.DiscountAmount,
		o.ShippingAmount, o.TaxAmount, o.FinalAmount, o.PaymentStatus, o.Status, o.PaymentMethod,
		o.GatewayOrderID, o.GatewayPaymentID, shipping, billing,
		o.CouponID, o.CouponCode, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("creating order %q: %w", o.OrderNumber, order.ErrDuplicateNumber)
		}
		return fmt.Errorf("creating order %q: %w", o.OrderNumber, err)
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(createOrderItemSQL, o.ID, item.ProductID, item.Quantity, item.Price, item.TotalPrice)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("creating order item %d for order %q: %w", i, o.OrderNumber, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("closing order item batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.OrderNumber, err)
	}
	return nil
}

// GetByID returns an order with its line items.
// Returns order.ErrNotFound when no such order exists.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", id, err)
	}

	return &o, nil
}

// ListByUser returns a user's order headers, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// List returns order headers newest first, optionally filtered by status,
// along with the total count for the same filter.
func (r *OrderRepository) List(ctx context.Context, status order.Status) ([]order.Order, int, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, countOrdersSQL, string(status)).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}
	return orders, count, nil
}

// UpdateStatus overwrites the order status.
// Returns order.ErrNotFound when no such order exists.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// MarkPaid records a successful payment: payment_status becomes paid, the
// gateway payment reference is stored, and a pending order is confirmed.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int64, paymentRef string) error {
	tag, err := r.pool.Exec(ctx, markOrderPaidSQL, id, paymentRef)
	if err != nil {
		return fmt.Errorf("marking order %d paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		shipping []byte
		billing  []byte
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.DiscountAmount, &o.ShippingAmount,
		&o.TaxAmount, &o.FinalAmount, &o.PaymentStatus, &o.Status, &o.PaymentMethod,
		&o.GatewayOrderID, &o.GatewayPaymentID, &shipping, &billing,
		&o.CouponID, &o.CouponCode, &o.TrackingNumber, &o.ShippingMethod, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	if err := json.Unmarshal(billing, &o.BillingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling billing address: %w", err)
	}
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.TotalPrice)
	return it, err
}
