// Command coupon-ingest loads partner coupon feeds (*.gz) into the coupon
// catalog database.
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kmedi-tour/internal/couponfeed"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
	"github.com/xenking/kmedi-tour/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

type options struct {
	dataDir     string
	databaseURL string
	batchSize   int
	workers     int
	dryRun      bool
}

// stats are updated concurrently by the readers and the writer.
type stats struct {
	parsed     atomic.Int64
	rejected   atomic.Int64
	duplicates atomic.Int64
	written    atomic.Int64
}

func main() {
	var opts options
	flag.StringVar(&opts.dataDir, "data-dir", "data/feeds", "directory containing *.gz coupon feeds")
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&opts.batchSize, "batch-size", 1000, "coupons per upsert batch")
	flag.IntVar(&opts.workers, "workers", 4, "feeds parsed concurrently")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}

	app.Run(func(ctx context.Context, lg *zap.Logger, _ *app.Telemetry) error {
		return run(ctx, lg, opts)
	})
}

func run(ctx context.Context, lg *zap.Logger, opts options) error {
	if opts.databaseURL == "" && !opts.dryRun {
		return errors.New("database URL is required: set --database-url or DATABASE_URL")
	}
	if opts.batchSize <= 0 || opts.workers <= 0 {
		return errors.New("batch size and workers must be positive")
	}

	files, err := filepath.Glob(filepath.Join(opts.dataDir, "*.gz"))
	if err != nil {
		return errors.Wrap(err, "list feeds")
	}
	if len(files) == 0 {
		lg.Info("No feeds found", zap.String("dir", opts.dataDir))
		return nil
	}
	sort.Strings(files)
	lg.Info("Ingesting coupon feeds", zap.Strings("files", files), zap.Bool("dry_run", opts.dryRun))

	write := func(context.Context, ...coupon.Rule) error { return nil }
	if !opts.dryRun {
		pool, err := postgres.NewPool(ctx, opts.databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		write = postgres.NewCouponRepository(pool).Upsert
	}

	var st stats
	rules := make(chan coupon.Rule, opts.batchSize)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	readers, rctx := errgroup.WithContext(wctx)
	readers.SetLimit(opts.workers)

	// The writer runs outside the reader group so SetLimit only bounds the
	// readers, and so it can flush what was parsed before a reader failed.
	writerDone := make(chan error, 1)
	go func() {
		err := writeRules(wctx, lg, rules, opts.batchSize, write, &st)
		if err != nil {
			cancel()
		}
		writerDone <- err
	}()

	for _, path := range files {
		readers.Go(func() error {
			return readFeed(rctx, lg, path, rules, &st)
		})
	}
	readErr := readers.Wait()
	close(rules)
	writeErr := <-writerDone

	lg.Info("Coupon ingest finished",
		zap.Int64("parsed", st.parsed.Load()),
		zap.Int64("rejected", st.rejected.Load()),
		zap.Int64("probable_duplicates", st.duplicates.Load()),
		zap.Int64("written", st.written.Load()),
	)
	if readErr != nil {
		return errors.Wrap(readErr, "read feeds")
	}
	if writeErr != nil {
		return errors.Wrap(writeErr, "write coupons")
	}
	return nil
}

func readFeed(ctx context.Context, lg *zap.Logger, path string, out chan<- coupon.Rule, st *stats) error {
	lg = lg.With(zap.String("file", filepath.Base(path)))
	var n int64
	err := couponfeed.ReadFile(ctx, path,
		func(r coupon.Rule) error {
			select {
			case out <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
			n++
			if total := st.parsed.Add(1); total%progressEvery == 0 {
				lg.Info("Parse progress", zap.Int64("total", total))
			}
			return nil
		},
		func(e *couponfeed.LineError) {
			st.rejected.Add(1)
			lg.Warn("Rejected feed line", zap.Int("line", e.Line), zap.Error(e.Err))
		},
	)
	if err != nil {
		return errors.Wrapf(err, "feed %s", path)
	}
	lg.Info("Feed parsed", zap.Int64("coupons", n))
	return nil
}

// writeRules upserts rules in batches. A code seen twice is written again,
// so the last occurrence wins; the bloom filter only estimates how often
// that happened.
func writeRules(
	ctx context.Context,
	lg *zap.Logger,
	in <-chan coupon.Rule,
	batchSize int,
	write func(context.Context, ...coupon.Rule) error,
	st *stats,
) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	batch := make([]coupon.Rule, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := write(ctx, batch...); err != nil {
			return err
		}
		written := st.written.Add(int64(len(batch)))
		lg.Debug("Batch written", zap.Int("size", len(batch)), zap.Int64("total", written))
		batch = batch[:0]
		return nil
	}

	for r := range in {
		if seen.TestOrAddString(r.Code) {
			st.duplicates.Add(1)
		}
		batch = append(batch, r)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
