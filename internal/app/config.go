package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (KMEDI_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL URL of the coupon catalog; empty serves the built-in coupons only" flag:"database-url"`
	CatalogFile string `usage:"YAML catalog overriding the embedded one" flag:"catalog-file"`
	// CouponRefresh is how often codes added to the coupon catalog are
	// picked up by the unknown-code filter.
	CouponRefresh time.Duration `default:"5m" usage:"Coupon code filter refresh interval" flag:"coupon-refresh"`
	// SweepInterval is how often idle trip sessions, assistant chats and
	// cached client state are dropped from memory.
	SweepInterval time.Duration `default:"10m" usage:"How often idle in-memory state is dropped" flag:"sweep-interval"`
	MaxSessions   int           `default:"100000" usage:"Live entries per in-memory store above which the service reports unhealthy" flag:"max-sessions"`
	Storage       StorageConfig
	Assistant     AssistantConfig
	Trip          TripConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// Storage backends.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// StorageConfig selects where per-client state (cart, wishlist, recently
// viewed, login) is persisted.
type StorageConfig struct {
	Backend       string        `default:"badger" usage:"Client state backend: badger, redis or memory"`
	Path          string        `default:"data/state" usage:"Badger directory; empty keeps badger in memory"`
	RedisAddr     string        `default:"localhost:6379" usage:"Redis address" flag:"redis-addr"`
	RedisPassword string        `usage:"Redis password" flag:"redis-password"`
	RedisDB       int           `default:"0" usage:"Redis database number" flag:"redis-db"`
	RedisTTL      time.Duration `default:"720h" usage:"Expiry of client state in Redis; zero keeps it forever" flag:"redis-ttl"`
	CacheTTL      time.Duration `default:"30m" usage:"Idle time after which stored client state leaves memory" flag:"state-cache-ttl"`
}

// AssistantConfig tunes the simulated reply latency of the assistant.
type AssistantConfig struct {
	MessageDelay   time.Duration `default:"1200ms" usage:"Minimum reply delay for free text"`
	MessageJitter  time.Duration `default:"800ms" usage:"Random extra delay for free text"`
	CategoryDelay  time.Duration `default:"1000ms" usage:"Minimum reply delay for category picks"`
	CategoryJitter time.Duration `default:"500ms" usage:"Random extra delay for category picks"`
	SessionTTL     time.Duration `default:"2h" usage:"Idle time after which a conversation is dropped" flag:"assistant-session-ttl"`
}

// TripConfig controls the in-memory trip builder sessions.
type TripConfig struct {
	AllowOvershoot bool          `default:"false" usage:"Let next move one past the last step" flag:"trip-overshoot"`
	SessionTTL     time.Duration `default:"24h" usage:"Idle time after which a trip session is dropped" flag:"trip-session-ttl"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KMEDI",
		Files:     []string{"config.yaml", "/etc/kmedi/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendBadger, BackendRedis, BackendMemory:
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.DatabaseURL != "" && c.CouponRefresh <= 0 {
		return errors.New("coupon refresh interval must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's KMEDI_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
