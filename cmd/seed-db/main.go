// Command seed-db loads initial catalog, coupon, and admin account data into
// the database. It is idempotent: rerunning it refreshes existing rows.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/auth"
	"github.com/velora-shop/storefront-api/internal/domain/coupon"
	"github.com/velora-shop/storefront-api/internal/domain/product"
	"github.com/velora-shop/storefront-api/internal/repository"
)

type productJSON struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	SKU         string          `json:"sku"`
	Images      json.RawMessage `json:"images"`
	Tags        json.RawMessage `json:"tags"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
		adminEmail   string
		jwtSecret    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "admin@velora.shop", "admin account email to seed")
	flag.StringVar(&jwtSecret, "jwt-secret", "", "JWT signing secret; when set, prints an admin token (or SHOP_JWT_SECRET env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if jwtSecret == "" {
		jwtSecret = os.Getenv("SHOP_JWT_SECRET")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminEmail, jwtSecret); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminEmail, jwtSecret string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCoupons(ctx, repository.NewCouponRepository(pool)); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, jwtSecret); err != nil {
		return errors.Wrap(err, "seed admin user")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if err := repo.Upsert(ctx, &product.Product{
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			SKU:         p.SKU,
			Images:      p.Images,
			Tags:        p.Tags,
		}); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Slug)
		}

		slog.Info("upserted product", slog.String("slug", p.Slug), slog.String("name", p.Name))
	}

	return nil
}

func seedCoupons(ctx context.Context, repo *repository.CouponRepository) error {
	slog.Info("seeding launch coupons")

	coupons := []struct {
		code         string
		discountType coupon.DiscountType
		value        decimal.Decimal
		minOrder     decimal.Decimal
	}{
		{"WELCOME10", coupon.DiscountPercentage, decimal.NewFromInt(10), decimal.Zero},
		{"FLAT50", coupon.DiscountFixed, decimal.NewFromInt(50), decimal.NewFromInt(500)},
	}

	for _, c := range coupons {
		if err := repo.Upsert(ctx, c.code, c.discountType, c.value, c.minOrder); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", c.code)
		}

		slog.Info("upserted coupon", slog.String("code", c.code))
	}

	return nil
}

func seedAdmin(ctx context.Context, repo *repository.UserRepository, email, jwtSecret string) error {
	slog.Info("seeding admin user", slog.String("email", email))

	id, err := repo.Upsert(ctx, "Store Admin", email, "admin", "admin")
	if err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	slog.Info("upserted admin user", slog.Int64("id", id))

	if jwtSecret == "" {
		return nil
	}

	token, err := auth.NewTokens([]byte(jwtSecret)).Issue(auth.Identity{
		UserID:   id,
		Email:    email,
		Name:     "Store Admin",
		Role:     "admin",
		UserType: "admin",
	})
	if err != nil {
		return errors.Wrap(err, "issue admin token")
	}

	slog.Info("issued admin token", slog.String("token", token))

	return nil
}
