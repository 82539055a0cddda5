// Command seed-db prepares the coupon catalog database: it applies the
// schema and upserts the built-in storefront coupons.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/domain/coupon"
	"github.com/xenking/kmedi-tour/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		deactivate  stringList
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Var(&deactivate, "deactivate", "coupon code to retire (repeatable)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		if databaseURL == "" {
			return errors.New("database URL is required: set --database-url or DATABASE_URL")
		}
		return run(ctx, lg, databaseURL, deactivate)
	})
}

func run(ctx context.Context, lg *zap.Logger, databaseURL string, deactivate []string) error {
	lg.Info("Connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	lg.Info("Running migrations")
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewCouponRepository(pool)
	rules := coupon.Storefront()
	if err := repo.Upsert(ctx, rules...); err != nil {
		return errors.Wrap(err, "seed coupons")
	}
	for _, r := range rules {
		lg.Info("Upserted coupon", zap.String("code", r.Code), zap.String("description", r.Description))
	}

	for _, code := range deactivate {
		if err := repo.Deactivate(ctx, code); err != nil {
			return err
		}
		lg.Info("Deactivated coupon", zap.String("code", coupon.Normalize(code)))
	}

	lg.Info("Seed completed")
	return nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return "" }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
