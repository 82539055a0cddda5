package app

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/domain/coupon"
	"github.com/xenking/kmedi-tour/internal/storage/postgres"
)

const (
	couponFilterFPRate = 0.001
	// couponFilterHeadroom leaves room for codes ingested while running.
	couponFilterHeadroom = 10_000
)

// coupons is the coupon lookup chain: built-in storefront codes first, then
// the optional Postgres catalog behind a bloom filter.
type coupons struct {
	repo     coupon.Repository
	pool     *pgxpool.Pool
	db       *postgres.CouponRepository
	filtered *coupon.FilteredRepository
}

func newCoupons(ctx context.Context, databaseURL string) (*coupons, error) {
	static := coupon.NewStaticRepository(coupon.Storefront()...)
	if databaseURL == "" {
		zctx.From(ctx).Info("No coupon database configured, serving built-in coupons")
		return &coupons{repo: static}, nil
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "create db pool")
	}
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "run migrations")
	}

	db := postgres.NewCouponRepository(pool)
	codes, err := db.ListCodes(ctx)
	if err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "list coupon codes")
	}
	zctx.From(ctx).Info("Coupon catalog loaded", zap.Int("codes", len(codes)))

	filtered := coupon.NewFilteredRepository(db, uint(len(codes)+couponFilterHeadroom), couponFilterFPRate, codes...)
	return &coupons{
		repo:     coupon.ChainRepository{static, filtered},
		pool:     pool,
		db:       db,
		filtered: filtered,
	}, nil
}

// refresh adds codes created since the last listing to the filter. Removed
// codes stay in the filter and are rejected by the database lookup.
func (c *coupons) refresh(ctx context.Context) error {
	codes, err := c.db.ListCodes(ctx)
	if err != nil {
		return errors.Wrap(err, "list coupon codes")
	}
	for _, code := range codes {
		c.filtered.Add(code)
	}
	return nil
}

// runRefresh refreshes the filter every interval until ctx is done. Failures
// are logged and retried on the next tick.
func (c *coupons) runRefresh(ctx context.Context, interval time.Duration) error {
	if c.db == nil {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				zctx.From(ctx).Warn("Refresh coupon filter", zap.Error(err))
			}
		}
	}
}

func (c *coupons) close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
