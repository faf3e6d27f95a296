package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-shop/storefront-api/internal/domain/payment"
)

const createTransactionSQL = `INSERT INTO transactions
	(order_id, gateway, gateway_order_id, amount, currency, status, gateway_response)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at`

var _ payment.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository persists gateway audit records.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository returns a TransactionRepository that uses the given pool.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create persists one transaction audit record.
func (r *TransactionRepository) Create(ctx context.Context, t *payment.Transaction) error {
	err := r.pool.QueryRow(ctx, createTransactionSQL,
		t.OrderID, t.Gateway, t.GatewayOrderID, t.Amount, t.Currency, t.Status, t.GatewayResponse,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction for gateway order %q: %w", t.GatewayOrderID, err)
	}
	return nil
}
