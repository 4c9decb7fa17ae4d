package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App         AppConfig
	Redis       RedisConfig
	CartStorage CartStorageConfig
	Pricing     PricingConfig
	Session     SessionConfig
	Shopify     ShopifyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.CartStorage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartStorageConfig selects the durable backend for cart line snapshots.
type CartStorageConfig struct {
	Driver     string        `envconfig:"STOREFRONT_CART_STORAGE_DRIVER" default:"redis"`
	SQLitePath string        `envconfig:"STOREFRONT_CART_SQLITE_PATH" default:"storefront.db"`
	TTL        time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"168h"`
}

func (c CartStorageConfig) NormalizedDriver() string {
	return strings.TrimSpace(strings.ToLower(c.Driver))
}

func (c CartStorageConfig) validate() error {
	switch c.NormalizedDriver() {
	case CartStorageDriverRedis, CartStorageDriverSQLite:
		return nil
	default:
		return fmt.Errorf("cart storage driver must be %q or %q", CartStorageDriverRedis, CartStorageDriverSQLite)
	}
}

// PricingConfig carries the tax/shipping policy. Values are decimal strings so
// money math never passes through binary floats.
type PricingConfig struct {
	TaxRate               string `envconfig:"STOREFRONT_TAX_RATE" default:"0.085"`
	FreeShippingThreshold string `envconfig:"STOREFRONT_FREE_SHIPPING_THRESHOLD" default:"100.00"`
	FlatShippingFee       string `envconfig:"STOREFRONT_FLAT_SHIPPING_FEE" default:"10.00"`
}

// Decimals parses the configured policy values.
func (p PricingConfig) Decimals() (taxRate, threshold, fee decimal.Decimal, err error) {
	taxRate, err = decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return taxRate, threshold, fee, fmt.Errorf("parsing tax rate: %w", err)
	}
	threshold, err = decimal.NewFromString(strings.TrimSpace(p.FreeShippingThreshold))
	if err != nil {
		return taxRate, threshold, fee, fmt.Errorf("parsing free shipping threshold: %w", err)
	}
	fee, err = decimal.NewFromString(strings.TrimSpace(p.FlatShippingFee))
	if err != nil {
		return taxRate, threshold, fee, fmt.Errorf("parsing flat shipping fee: %w", err)
	}
	return taxRate, threshold, fee, nil
}

type SessionConfig struct {
	CookieName   string        `envconfig:"STOREFRONT_SESSION_COOKIE" default:"storefront_session"`
	TTL          time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"72h"`
	CookieSecure bool          `envconfig:"STOREFRONT_SESSION_COOKIE_SECURE" default:"false"`
}

type ShopifyConfig struct {
	StoreDomain          string `envconfig:"STOREFRONT_SHOPIFY_STORE_DOMAIN" required:"true"`
	StorefrontToken      string `envconfig:"STOREFRONT_SHOPIFY_STOREFRONT_TOKEN" required:"true"`
	APIVersion           string `envconfig:"STOREFRONT_SHOPIFY_API_VERSION" default:"2025-07"`
	RemoteCartTTLMinutes int    `envconfig:"STOREFRONT_SHOPIFY_REMOTE_CART_TTL_MINUTES" default:"1440"`
}

// RemoteCartTTL returns how long a cached remote cart id stays resumable.
func (s ShopifyConfig) RemoteCartTTL() time.Duration {
	if s.RemoteCartTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.RemoteCartTTLMinutes) * time.Minute
}
