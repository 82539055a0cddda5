//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "kmedi",
				"POSTGRES_PASSWORD": "kmedi",
				"POSTGRES_DB":       "kmedi",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	pool, err := NewPool(ctx, fmt.Sprintf("postgres://kmedi:kmedi@%s/kmedi?sslmode=disable", endpoint))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool), "schema is idempotent")
	return pool
}

func TestCouponRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCouponRepository(startPostgres(t))

	until := time.Date(2026, 12, 31, 14, 59, 59, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx,
		coupon.Rule{
			Code:         "welcome10",
			DiscountType: coupon.DiscountPercent,
			Value:        decimal.NewFromInt(10),
			Description:  "10% off",
		},
		coupon.Rule{
			Code:           "SPRING200K",
			DiscountType:   coupon.DiscountFixed,
			Value:          decimal.NewFromInt(200_000),
			MinOrderAmount: decimal.NewFromInt(1_500_000),
			ValidUntil:     &until,
		},
	))

	rule, err := repo.FindByCode(ctx, "Welcome10")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", rule.Code)
	assert.Equal(t, coupon.DiscountPercent, rule.DiscountType)
	assert.True(t, decimal.NewFromInt(10).Equal(rule.Value))
	assert.Nil(t, rule.ValidUntil)

	rule, err = repo.FindByCode(ctx, "SPRING200K")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1_500_000).Equal(rule.MinOrderAmount))
	require.NotNil(t, rule.ValidUntil)
	assert.True(t, until.Equal(*rule.ValidUntil))

	codes, err := repo.ListCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPRING200K", "WELCOME10"}, codes)

	require.NoError(t, repo.Deactivate(ctx, "welcome10"))
	_, err = repo.FindByCode(ctx, "WELCOME10")
	require.ErrorIs(t, err, coupon.ErrInvalidCoupon)

	_, err = repo.FindByCode(ctx, "NOPE")
	require.ErrorIs(t, err, coupon.ErrInvalidCoupon)
}
