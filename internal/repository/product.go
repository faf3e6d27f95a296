package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora-shop/storefront-api/internal/domain/product"
)

const (
	productColumns = `id, category_id, brand_id, name, slug, coalesce(description, ''), price, stock,
		coalesce(sku, ''), images, tags, specifications, dimensions, status, is_published, created_at`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	countProductsSQL = `SELECT count(*) FROM products`

	countLowStockSQL = `SELECT count(*) FROM products WHERE stock < $1`

	setProductStockSQL = `UPDATE products SET stock = $2 WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (name, slug, description, price, stock, sku, images, tags, status, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, TRUE)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			sku = EXCLUDED.sku,
			images = EXCLUDED.images,
			tags = EXCLUDED.tags`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &product.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Count returns the total number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// CountLowStock returns the number of products with stock below threshold.
func (r *ProductRepository) CountLowStock(ctx context.Context, threshold int) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countLowStockSQL, threshold).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting low stock products: %w", err)
	}
	return n, nil
}

// SetStock overwrites a product's stock level.
func (r *ProductRepository) SetStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.pool.Exec(ctx, setProductStockSQL, id, stock)
	if err != nil {
		return fmt.Errorf("setting stock of product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &product.NotFoundError{ID: id}
	}
	return nil
}

// Upsert inserts or refreshes a catalog entry keyed by slug. Used by the
// seed tooling.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.Name, p.Slug, p.Description, p.Price, p.Stock, p.SKU, p.Images, p.Tags,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.Slug, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.BrandID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&p.SKU, &p.Images, &p.Tags, &p.Specifications, &p.Dimensions,
		&p.Status, &p.IsPublished, &p.CreatedAt,
	)
	return p, err
}
