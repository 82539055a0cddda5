package coupon

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	_ Repository = (*StaticRepository)(nil)
	_ Repository = (*FilteredRepository)(nil)
	_ Repository = ChainRepository(nil)
)

// StaticRepository serves a fixed whitelist of rules held in memory.
type StaticRepository struct {
	rules map[string]Rule
}

// NewStaticRepository indexes rules by their normalized code. Later rules
// override earlier ones with the same code.
func NewStaticRepository(rules ...Rule) *StaticRepository {
	r := &StaticRepository{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		rule.Code = Normalize(rule.Code)
		r.rules[rule.Code] = rule
	}
	return r
}

// FindByCode returns a copy of the rule registered for code.
func (r *StaticRepository) FindByCode(_ context.Context, code string) (*Rule, error) {
	rule, ok := r.rules[Normalize(code)]
	if !ok {
		return nil, ErrInvalidCoupon
	}
	return &rule, nil
}

// Rules returns every registered rule.
func (r *StaticRepository) Rules() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	return out
}

// FilteredRepository answers "unknown code" from a bloom filter of known
// codes before touching the underlying repository. A filter hit still
// consults next, so false positives only cost a lookup.
type FilteredRepository struct {
	next Repository

	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewFilteredRepository builds a filter sized for capacity codes at the given
// false-positive rate and seeds it with codes.
func NewFilteredRepository(next Repository, capacity uint, fpRate float64, codes ...string) *FilteredRepository {
	if capacity < uint(len(codes)) {
		capacity = uint(len(codes))
	}
	if capacity == 0 {
		capacity = 1
	}
	r := &FilteredRepository{
		next:   next,
		filter: bloom.NewWithEstimates(capacity, fpRate),
	}
	for _, c := range codes {
		r.filter.AddString(Normalize(c))
	}
	return r
}

// Add registers a code that became known after construction.
func (r *FilteredRepository) Add(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter.AddString(Normalize(code))
}

// MayContain reports whether code passes the filter.
func (r *FilteredRepository) MayContain(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter.TestString(Normalize(code))
}

// FindByCode rejects codes absent from the filter, otherwise delegates.
func (r *FilteredRepository) FindByCode(ctx context.Context, code string) (*Rule, error) {
	if !r.MayContain(code) {
		return nil, ErrInvalidCoupon
	}
	return r.next.FindByCode(ctx, code)
}

// ChainRepository tries each repository in order and returns the first
// match. ErrInvalidCoupon from one repository moves on to the next; any
// other error stops the lookup.
type ChainRepository []Repository

// FindByCode implements Repository.
func (c ChainRepository) FindByCode(ctx context.Context, code string) (*Rule, error) {
	for _, r := range c {
		rule, err := r.FindByCode(ctx, code)
		if err == nil {
			return rule, nil
		}
		if !errors.Is(err, ErrInvalidCoupon) {
			return nil, err
		}
	}
	return nil, ErrInvalidCoupon
}

// Storefront returns the built-in storefront whitelist: the cart page codes
// and the published promotion coupons.
func Storefront() []Rule {
	return []Rule{
		{
			Code:         "WELCOME10",
			DiscountType: DiscountPercent,
			Value:        decimal.NewFromInt(10),
			Description:  "10% off",
		},
		{
			Code:         "SAVE50K",
			DiscountType: DiscountFixed,
			Value:        decimal.NewFromInt(50_000),
			Description:  "₩50,000 off",
		},
		{
			Code:           "WELCOME15",
			DiscountType:   DiscountPercent,
			Value:          decimal.NewFromInt(15),
			MinOrderAmount: decimal.NewFromInt(500_000),
			Description:    "Welcome Coupon - 15% OFF",
			ValidUntil:     endOfDay(2026, time.December, 31),
		},
		{
			Code:           "SPRING200K",
			DiscountType:   DiscountFixed,
			Value:          decimal.NewFromInt(200_000),
			MinOrderAmount: decimal.NewFromInt(1_500_000),
			Description:    "Spring Special - 200,000 KRW OFF",
			ValidUntil:     endOfDay(2026, time.May, 31),
		},
		{
			Code:           "VIP30",
			DiscountType:   DiscountPercent,
			Value:          decimal.NewFromInt(30),
			MinOrderAmount: decimal.NewFromInt(5_000_000),
			Description:    "VIP Exclusive - 30% OFF Premium Packages",
			ValidUntil:     endOfDay(2026, time.June, 30),
		},
	}
}

// seoul is the storefront's business time zone. Korea observes no DST.
var seoul = time.FixedZone("KST", 9*60*60)

func endOfDay(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 23, 59, 59, 0, seoul)
	return &t
}
