package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	rule     *Rule
	err      error
	lastCode string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Rule, error) {
	m.lastCode = code
	return m.rule, m.err
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		repo       *mockCouponRepo
		code       string
		subtotal   decimal.Decimal
		wantAmount decimal.Decimal
		wantErr    error
	}{
		{
			name: "valid code returns discount",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "WELCOME10", DiscountType: DiscountPercent, Value: decimal.NewFromInt(10)},
			},
			code:       "WELCOME10",
			subtotal:   decimal.NewFromInt(1_000_000),
			wantAmount: decimal.NewFromInt(100_000),
		},
		{
			name:     "unknown code returns ErrInvalidCoupon",
			repo:     &mockCouponRepo{err: ErrInvalidCoupon},
			code:     "BOGUS",
			subtotal: decimal.NewFromInt(50),
			wantErr:  ErrInvalidCoupon,
		},
		{
			name:     "blank code is invalid without lookup",
			repo:     &mockCouponRepo{err: errors.New("must not be called")},
			code:     "   ",
			subtotal: decimal.NewFromInt(50),
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "expired coupon (valid_until in past)",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "OLD", DiscountType: DiscountPercent, Value: decimal.NewFromInt(10), ValidUntil: &pastTime},
			},
			code:     "OLD",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrCouponExpired,
		},
		{
			name: "coupon not yet valid (valid_from in future)",
			repo: &mockCouponRepo{
				rule: &Rule{Code: "FUTURE", DiscountType: DiscountPercent, Value: decimal.NewFromInt(10), ValidFrom: &futureTime},
			},
			code:     "FUTURE",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrCouponExpired,
		},
		{
			name: "coupon within valid window succeeds",
			repo: &mockCouponRepo{
				rule: &Rule{
					Code:         "WINDOW",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(5_000),
					ValidFrom:    &pastTime,
					ValidUntil:   &futureTime,
				},
			},
			code:       "WINDOW",
			subtotal:   decimal.NewFromInt(100_000),
			wantAmount: decimal.NewFromInt(5_000),
		},
		{
			name: "min order not met",
			repo: &mockCouponRepo{
				rule: &Rule{
					Code:           "VIP30",
					DiscountType:   DiscountPercent,
					Value:          decimal.NewFromInt(30),
					MinOrderAmount: decimal.NewFromInt(5_000_000),
				},
			},
			code:     "VIP30",
			subtotal: decimal.NewFromInt(1_000_000),
			wantErr:  ErrMinOrderNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo)
			v.now = func() time.Time { return fixedNow }

			rule, got, err := v.Validate(context.Background(), tt.code, tt.subtotal)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rule)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, rule)
			require.NotNil(t, got)
			assert.True(t, tt.wantAmount.Equal(got.Amount),
				"expected amount %s, got %s", tt.wantAmount, got.Amount)
		})
	}
}

func TestRepoValidator_NormalizesCode(t *testing.T) {
	repo := &mockCouponRepo{
		rule: &Rule{Code: "SAVE50K", DiscountType: DiscountFixed, Value: decimal.NewFromInt(50_000)},
	}

	v := NewRepoValidator(repo)
	_, _, err := v.Validate(context.Background(), " save50k ", decimal.NewFromInt(1_000_000))

	require.NoError(t, err)
	assert.Equal(t, "SAVE50K", repo.lastCode)
}

func TestRepoValidator_RepositoryError(t *testing.T) {
	repo := &mockCouponRepo{err: errors.New("db error")}

	v := NewRepoValidator(repo)
	_, _, err := v.Validate(context.Background(), "ANY", decimal.NewFromInt(100))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCoupon)
	assert.Contains(t, err.Error(), "lookup coupon")
}
