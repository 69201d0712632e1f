package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/teamfit/storefront/internal/domain/auth"
	"github.com/teamfit/storefront/internal/repository"
)

func main() {
	var (
		databaseURL string
		email       string
		password    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&email, "member-email", "demo@storefront.dev", "email for the seeded demo member")
	flag.StringVar(&password, "member-password", "", "password for the seeded demo member (or STORE_SEED_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if password == "" {
		password = os.Getenv("STORE_SEED_PASSWORD")
	}
	if password == "" {
		slog.Error("member password is required: set --member-password or STORE_SEED_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, email, password); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, email, password string) error {
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

	memberID, err := seedMember(ctx, pool, email, password)
	if err != nil {
		return errors.Wrap(err, "seed member")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedCoupons(ctx, pool, memberID); err != nil {
		return errors.Wrap(err, "seed coupons")
	}

	return nil
}

func seedMember(ctx context.Context, pool *pgxpool.Pool, email, password string) (int64, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO members (email, name, password_hash)
		VALUES ($1, 'Demo Member', $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id`, email, hash).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(err, "upsert member")
	}

	slog.Info("upserted member", slog.String("email", email), slog.Int64("id", id))
	return id, nil
}

type seedProduct struct {
	category     string
	name         string
	price        decimal.Decimal
	info         string
	stock        int
	manufacturer string
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []struct {
		name   string
		parent string
		order  int
	}{
		{name: "Supplements", order: 1},
		{name: "Protein", parent: "Supplements", order: 1},
		{name: "Vitamins", parent: "Supplements", order: 2},
		{name: "Equipment", order: 2},
		{name: "Weights", parent: "Equipment", order: 1},
	}

	ids := make(map[string]int64, len(categories))
	for _, c := range categories {
		var parentID *int64
		if c.parent != "" {
			id := ids[c.parent]
			parentID = &id
		}

		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, parent_id, display_order)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET display_order = EXCLUDED.display_order
			RETURNING id`, c.name, parentID, c.order).Scan(&id)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.name)
		}
		ids[c.name] = id

		slog.Info("upserted category", slog.String("name", c.name), slog.Int64("id", id))
	}

	products := []seedProduct{
		{category: "Protein", name: "Whey Protein 2kg", price: decimal.NewFromInt(45000), info: "Chocolate flavour whey isolate", stock: 50, manufacturer: "TeamFit"},
		{category: "Protein", name: "Protein Bar 12-pack", price: decimal.NewFromInt(18000), info: "Low sugar protein bars", stock: 120, manufacturer: "TeamFit"},
		{category: "Vitamins", name: "Multivitamin 90ct", price: decimal.NewFromInt(22000), info: "Daily multivitamin", stock: 80, manufacturer: "VitaLab"},
		{category: "Weights", name: "Adjustable Dumbbell 24kg", price: decimal.NewFromInt(189000), info: "Dial adjustment, single unit", stock: 15, manufacturer: "IronWorks"},
	}

	for _, p := range products {
		tag, err := pool.Exec(ctx, `
			INSERT INTO products (category_id, name, price, info, stock, manufacturer)
			SELECT $1, $2, $3, $4, $5, $6
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $2 AND NOT is_deleted)`,
			ids[p.category], p.name, p.price, p.info, p.stock, p.manufacturer)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.name)
		}
		if tag.RowsAffected() > 0 {
			slog.Info("inserted product", slog.String("name", p.name))
		}
	}

	return nil
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, memberID int64) error {
	names := []string{"Welcome 10% off", "Free delivery"}

	for _, name := range names {
		tag, err := pool.Exec(ctx, `
			INSERT INTO coupon_grants (member_id, name)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM coupon_grants WHERE member_id = $1 AND name = $2)`,
			memberID, name)
		if err != nil {
			return errors.Wrapf(err, "insert coupon grant %s", name)
		}
		if tag.RowsAffected() > 0 {
			slog.Info("inserted coupon grant", slog.String("name", name))
		}
	}

	return nil
}
