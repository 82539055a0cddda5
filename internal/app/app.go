package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kmedi-tour/internal/api"
	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/clientstate"
	"github.com/xenking/kmedi-tour/internal/domain/account"
	"github.com/xenking/kmedi-tour/internal/domain/assistant"
	"github.com/xenking/kmedi-tour/internal/domain/booking"
	"github.com/xenking/kmedi-tour/internal/domain/cart"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
	"github.com/xenking/kmedi-tour/internal/domain/recent"
	"github.com/xenking/kmedi-tour/internal/domain/trip"
	"github.com/xenking/kmedi-tour/internal/domain/wishlist"
	"github.com/xenking/kmedi-tour/pkg/health"
	"github.com/xenking/kmedi-tour/pkg/httpmiddleware"
)

// maxPendingWrites is the backlog of unsaved client records above which the
// service stops reporting ready.
const maxPendingWrites = 10_000

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Backend),
	)
	ctx = zctx.Base(ctx, lg)

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	store, err := openClientStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			lg.Error("Close client store", zap.Error(err))
		}
	}()

	cps, err := newCoupons(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer cps.close()

	// Client state and sessions.
	carts := clientstate.New[cart.Cart](clientstate.CartStore, store)
	wishlists := clientstate.New[wishlist.Wishlist](clientstate.WishlistStore, store)
	recents := clientstate.New[recent.List](clientstate.RecentStore, store)
	accounts := clientstate.New[account.Session](clientstate.AuthStore, store)

	var tripOpts []trip.Option
	if cfg.Trip.AllowOvershoot {
		tripOpts = append(tripOpts, trip.WithOvershoot())
	}
	trips := trip.NewRegistry(tripOpts...)

	chat := assistant.NewSessions(assistant.New(assistant.Options{
		Message:  assistant.Delay{Base: cfg.Assistant.MessageDelay, Jitter: cfg.Assistant.MessageJitter},
		Category: assistant.Delay{Base: cfg.Assistant.CategoryDelay, Jitter: cfg.Assistant.CategoryJitter},
	}))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("trip-sessions", time.Second,
		health.SizeCheck("trip sessions", trips.Len, cfg.MaxSessions))
	healthSvc.AddLivenessCheck("assistant-sessions", time.Second,
		health.SizeCheck("assistant sessions", chat.Len, cfg.MaxSessions))
	healthSvc.AddLivenessCheck("client-state-cache", time.Second,
		health.SizeCheck("cached clients", func() int {
			return max(carts.Len(), wishlists.Len(), recents.Len(), accounts.Len())
		}, cfg.MaxSessions))
	healthSvc.AddReadinessCheck("client-state-backlog", time.Second,
		health.SizeCheck("pending client state writes", func() int {
			return carts.Pending() + wishlists.Pending() + recents.Pending() + accounts.Pending()
		}, maxPendingWrites))
	if store.pinger != nil {
		healthSvc.AddReadinessCheck(cfg.Storage.Backend, 5*time.Second, health.PingCheck(store.pinger))
	}
	if cps.pool != nil {
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(cps.pool))
	}
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	srv, err := api.NewServer(api.Deps{
		Catalog:        cat,
		Trips:          trips,
		Carts:          carts,
		CartSvc:        cart.NewService(cat, coupon.NewRepoValidator(cps.repo)),
		Wishlists:      wishlists,
		Recent:         recents,
		Accounts:       accounts,
		Assistant:      chat,
		Bookings:       booking.NewService(cat),
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create api server")
	}

	// Mux: health endpoints + API routes on one server.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	srv.Register(mux)
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{
					"Content-Type",
					httpmiddleware.ClientIDHeader,
					httpmiddleware.RequestIDHeader,
				},
				ExposeHeaders: []string{
					httpmiddleware.ClientIDHeader,
					httpmiddleware.RequestIDHeader,
					"Retry-After",
				},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.ClientID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("kmedi-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Background work outlives ctx until the server has drained, so the
	// last requests' client state is still written behind.
	bgCtx, stopBackground := context.WithCancel(context.WithoutCancel(ctx))
	defer stopBackground()
	g, gCtx := errgroup.WithContext(bgCtx)
	g.Go(func() error { return carts.Run(gCtx) })
	g.Go(func() error { return wishlists.Run(gCtx) })
	g.Go(func() error { return recents.Run(gCtx) })
	g.Go(func() error { return accounts.Run(gCtx) })
	g.Go(func() error {
		return sweepIdle(gCtx, cfg.SweepInterval, map[string]idleStore{
			"trip sessions":   {trips, cfg.Trip.SessionTTL},
			"assistant chats": {chat, cfg.Assistant.SessionTTL},
			"cart cache":      {carts, cfg.Storage.CacheTTL},
			"wishlist cache":  {wishlists, cfg.Storage.CacheTTL},
			"recent cache":    {recents, cfg.Storage.CacheTTL},
			"login cache":     {accounts, cfg.Storage.CacheTTL},
		})
	})
	g.Go(func() error { return cps.runRefresh(gCtx, cfg.CouponRefresh) })

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stopBackground()
		_ = g.Wait()
		return errors.Wrap(err, "server")
	}
	<-shutdownDone

	stopBackground()
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "background")
	}
	lg.Info("Client state flushed")
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

// sweeper is an in-memory store that drops entries idle for longer than a
// ttl.
type sweeper interface {
	Sweep(ttl time.Duration) int
	Len() int
}

type idleStore struct {
	s   sweeper
	ttl time.Duration
}

// sweepIdle drops idle entries from every store each interval until ctx is
// done.
func sweepIdle(ctx context.Context, every time.Duration, stores map[string]idleStore) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for name, st := range stores {
				if n := st.s.Sweep(st.ttl); n > 0 {
					zctx.From(ctx).Debug("Dropped idle entries",
						zap.String("store", name),
						zap.Int("removed", n),
						zap.Int("live", st.s.Len()),
					)
				}
			}
		}
	}
}
