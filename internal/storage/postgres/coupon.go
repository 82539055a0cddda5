package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT code, discount_type, value, min_order_amount, max_discount,
		description, valid_from, valid_until
		FROM coupons WHERE code = UPPER($1) AND active`

	listActiveCodesSQL = `SELECT code FROM coupons WHERE active ORDER BY code`

	upsertCouponSQL = `INSERT INTO coupons (code, discount_type, value, min_order_amount,
		max_discount, description, valid_from, valid_until, active, updated_at)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, TRUE, NOW())
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			min_order_amount = EXCLUDED.min_order_amount,
			max_discount = EXCLUDED.max_discount,
			description = EXCLUDED.description,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			active = TRUE,
			updated_at = NOW()`

	deactivateCouponSQL = `UPDATE coupons SET active = FALSE, updated_at = NOW() WHERE code = UPPER($1)`
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

// FindByCode looks up an active coupon. It returns coupon.ErrInvalidCoupon
// when there is none.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanCouponRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, errors.Wrapf(err, "find coupon %q", code)
	}
	return &rule, nil
}

// ListCodes returns every active code, used to prime the bloom filter.
func (r *CouponRepository) ListCodes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listActiveCodesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list coupon codes")
	}
	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "list coupon codes")
	}
	return codes, nil
}

// Upsert inserts or replaces rules in one batch and reactivates them.
func (r *CouponRepository) Upsert(ctx context.Context, rules ...coupon.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rule := range rules {
		batch.Queue(upsertCouponSQL,
			rule.Code, string(rule.DiscountType), rule.Value, rule.MinOrderAmount,
			rule.MaxDiscount, rule.Description, rule.ValidFrom, rule.ValidUntil,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "upsert %d coupons", len(rules))
	}
	return nil
}

// Deactivate retires a code without deleting its history.
func (r *CouponRepository) Deactivate(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, deactivateCouponSQL, code); err != nil {
		return errors.Wrapf(err, "deactivate coupon %q", code)
	}
	return nil
}

func scanCouponRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var (
		rule         coupon.Rule
		discountType string
		value        decimal.Decimal
		minOrder     decimal.Decimal
		maxDiscount  decimal.Decimal
		validFrom    *time.Time
		validUntil   *time.Time
	)
	err := row.Scan(
		&rule.Code, &discountType, &value, &minOrder, &maxDiscount,
		&rule.Description, &validFrom, &validUntil,
	)
	rule.DiscountType = coupon.DiscountType(discountType)
	rule.Value = value
	rule.MinOrderAmount = minOrder
	rule.MaxDiscount = maxDiscount
	rule.ValidFrom = validFrom
	rule.ValidUntil = validUntil
	return rule, err
}
