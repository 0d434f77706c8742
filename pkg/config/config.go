package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is applied by envconfig on top of the per-field names below.
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App        AppConfig
	Medusa     MedusaConfig
	CMS        CMSConfig
	Redis      RedisConfig
	Cookies    CookieConfig
	Proxy      ProxyConfig
	Regions    RegionConfig
	Newsletter NewsletterConfig
	RateLimit  RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Medusa.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"9000"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type MedusaConfig struct {
	BaseURL        string        `envconfig:"STOREFRONT_MEDUSA_BACKEND_URL" required:"true"`
	PublishableKey string        `envconfig:"STOREFRONT_MEDUSA_PUBLISHABLE_KEY" required:"true"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_MEDUSA_REQUEST_TIMEOUT" default:"15s"`
}

func (m MedusaConfig) validate() error {
	u, err := url.Parse(m.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing medusa backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("medusa backend url %q must be absolute", m.BaseURL)
	}
	return nil
}

type CMSConfig struct {
	BaseURL        string        `envconfig:"STOREFRONT_CMS_BASE_URL"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_CMS_REQUEST_TIMEOUT" default:"10s"`
}

// Enabled reports whether a CMS origin is configured; content endpoints
// degrade to empty payloads when it is not.
func (c CMSConfig) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != ""
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

type CookieConfig struct {
	CartMaxAge     time.Duration `envconfig:"STOREFRONT_COOKIE_CART_MAX_AGE" default:"168h"`
	AuthMaxAge     time.Duration `envconfig:"STOREFRONT_COOKIE_AUTH_MAX_AGE" default:"168h"`
	Secure         bool          `envconfig:"STOREFRONT_COOKIE_SECURE" default:"true"`
	RequireConsent bool          `envconfig:"STOREFRONT_COOKIE_REQUIRE_CONSENT" default:"true"`
}

type ProxyConfig struct {
	UpstreamTimeout time.Duration `envconfig:"STOREFRONT_PROXY_UPSTREAM_TIMEOUT" default:"10s"`
	CacheTTL        time.Duration `envconfig:"STOREFRONT_PROXY_CACHE_TTL" default:"30s"`
	AllowedPrefixes []string      `envconfig:"STOREFRONT_PROXY_ALLOWED_PREFIXES" default:"/store/"`
}

type RegionConfig struct {
	DefaultCountry string        `envconfig:"STOREFRONT_DEFAULT_REGION" default:"us"`
	CacheTTL       time.Duration `envconfig:"STOREFRONT_REGION_CACHE_TTL" default:"1h"`
	// CountryAlias substitutes one requested country code for another before
	// lookup, formatted "from:to". Covers a catalog gap upstream.
	CountryAlias string `envconfig:"STOREFRONT_REGION_COUNTRY_ALIAS" default:"gb:ie"`
}

// AliasPair splits the configured substitution into its from/to codes.
func (r RegionConfig) AliasPair() (string, string, bool) {
	from, to, found := strings.Cut(r.CountryAlias, ":")
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if !found || from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

type NewsletterConfig struct {
	APIKey      string `envconfig:"STOREFRONT_EMAIL_API_KEY"`
	BaseURL     string `envconfig:"STOREFRONT_EMAIL_API_BASE_URL" default:"https://api.resend.com"`
	FromAddress string `envconfig:"STOREFRONT_EMAIL_FROM_ADDRESS"`
	AudienceID  string `envconfig:"STOREFRONT_EMAIL_AUDIENCE_ID"`
}

func (n NewsletterConfig) Enabled() bool {
	return strings.TrimSpace(n.APIKey) != ""
}

type RateLimitConfig struct {
	ProxyWindow  time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_PROXY_WINDOW" default:"1m"`
	ProxyIPLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_PROXY_IP_LIMIT" default:"120"`
}
