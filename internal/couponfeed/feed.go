// Package couponfeed reads partner coupon feeds. A feed is a gzip-compressed
// text file with one coupon per line:
//
//	CODE;percent|fixed;value;minOrder;validUntil
//
// minOrder and validUntil may be empty. validUntil is a date; the coupon is
// valid through the end of that day in Seoul. Blank lines and lines starting
// with # are ignored.
package couponfeed

import (
	"bufio"
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

const (
	fieldCount = 5
	minCodeLen = 4
	maxCodeLen = 32
)

var (
	hundred = decimal.NewFromInt(100)
	seoul   = time.FixedZone("KST", 9*60*60)
)

// LineError reports a malformed feed line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return "line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *LineError) Unwrap() error { return e.Err }

// ParseLine parses one feed record into a coupon rule.
func ParseLine(line string) (coupon.Rule, error) {
	fields := strings.Split(line, ";")
	if len(fields) != fieldCount {
		return coupon.Rule{}, errors.Errorf("want %d fields, got %d", fieldCount, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	code := coupon.Normalize(fields[0])
	if err := checkCode(code); err != nil {
		return coupon.Rule{}, err
	}

	rule := coupon.Rule{
		Code:         code,
		DiscountType: coupon.DiscountType(strings.ToLower(fields[1])),
	}

	value, err := decimal.NewFromString(fields[2])
	if err != nil {
		return coupon.Rule{}, errors.Wrap(err, "value")
	}
	if !value.IsPositive() {
		return coupon.Rule{}, errors.New("value must be positive")
	}
	rule.Value = value

	switch rule.DiscountType {
	case coupon.DiscountPercent:
		if value.GreaterThan(hundred) {
			return coupon.Rule{}, errors.New("percent value above 100")
		}
		rule.Description = value.String() + "% OFF"
	case coupon.DiscountFixed:
		rule.Description = value.StringFixed(0) + " KRW OFF"
	default:
		return coupon.Rule{}, errors.Errorf("unknown discount type %q", fields[1])
	}

	if fields[3] != "" {
		minOrder, err := decimal.NewFromString(fields[3])
		if err != nil {
			return coupon.Rule{}, errors.Wrap(err, "min order")
		}
		if minOrder.IsNegative() {
			return coupon.Rule{}, errors.New("min order must not be negative")
		}
		rule.MinOrderAmount = minOrder
	}

	if fields[4] != "" {
		day, err := time.ParseInLocation(time.DateOnly, fields[4], seoul)
		if err != nil {
			return coupon.Rule{}, errors.Wrap(err, "valid until")
		}
		until := day.Add(24*time.Hour - time.Second)
		rule.ValidUntil = &until
	}

	return rule, nil
}

func checkCode(code string) error {
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return errors.Errorf("code length %d outside %d..%d", len(code), minCodeLen, maxCodeLen)
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return errors.Errorf("code %q has invalid character %q", code, c)
		}
	}
	return nil
}

// Read parses every record of an uncompressed feed. Records are handed to
// emit; malformed lines go to reject and do not stop the read. An error from
// emit aborts the read.
func Read(ctx context.Context, r io.Reader, emit func(coupon.Rule) error, reject func(*LineError)) error {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := ParseLine(line)
		if err != nil {
			reject(&LineError{Line: n, Err: err})
			continue
		}
		if err := emit(rule); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scan feed")
	}
	return nil
}

// ReadFile reads a gzip-compressed feed from path.
func ReadFile(ctx context.Context, path string, emit func(coupon.Rule) error, reject func(*LineError)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	return Read(ctx, gz, emit, reject)
}
