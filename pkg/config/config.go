package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Idempotency  IdempotencyConfig
	Cron         CronConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ATACADO_APP_ENV" required:"true"`
	Port         string   `envconfig:"ATACADO_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ATACADO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ATACADO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ATACADO_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ATACADO_SERVICE_KIND" default:"api"`

	// MetricsAddr is where worker processes expose /metrics. Empty disables it.
	MetricsAddr string `envconfig:"ATACADO_WORKER_METRICS_ADDR" default:":9091"`
}

type DBConfig struct {
	DSN    string `envconfig:"ATACADO_DB_DSN"`
	Driver string `envconfig:"ATACADO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATACADO_DB_HOST"`
	LegacyPort     int    `envconfig:"ATACADO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATACADO_DB_USER"`
	LegacyPassword string `envconfig:"ATACADO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATACADO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATACADO_DB_SSLMODE" default:"disable"`

	MaxOpenConns       int           `envconfig:"ATACADO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns       int           `envconfig:"ATACADO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime    time.Duration `envconfig:"ATACADO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime    time.Duration `envconfig:"ATACADO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQueryThreshold time.Duration `envconfig:"ATACADO_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the sqlite dialector should be used instead of Postgres.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ATACADO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ATACADO_REDIS_ADDR"`
	Password     string        `envconfig:"ATACADO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATACADO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATACADO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATACADO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATACADO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATACADO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATACADO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ATACADO_AUTO_MIGRATE" default:"false"`
}

// PricingConfig carries the monetary policy used by the pricing engine.
type PricingConfig struct {
	CurrencyPlaces     int32   `envconfig:"ATACADO_PRICING_CURRENCY_PLACES" default:"2"`
	Rounding           string  `envconfig:"ATACADO_PRICING_ROUNDING" default:"half_up"`
	CampaignStacking   string  `envconfig:"ATACADO_PRICING_CAMPAIGN_STACKING" default:"additive"`
	MaxCashbackPercent float64 `envconfig:"ATACADO_PRICING_MAX_CASHBACK_PERCENT" default:"100"`
}

// maxCurrencyPlaces is the scale of every money column (numeric(12,2)).
const maxCurrencyPlaces = 2

func (p PricingConfig) validate() error {
	if p.CurrencyPlaces < 0 || p.CurrencyPlaces > maxCurrencyPlaces {
		return fmt.Errorf("%s must be between 0 and %d", EnvPricingCurrencyPlaces, maxCurrencyPlaces)
	}
	switch strings.ToLower(p.Rounding) {
	case RoundingHalfUp, RoundingHalfEven, RoundingDown:
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvPricingRounding, RoundingHalfUp, RoundingHalfEven, RoundingDown)
	}
	switch strings.ToLower(p.CampaignStacking) {
	case StackingAdditive, StackingBest:
	default:
		return fmt.Errorf("%s must be %s or %s", EnvPricingCampaignStacking, StackingAdditive, StackingBest)
	}
	if p.MaxCashbackPercent <= 0 || p.MaxCashbackPercent > 100 {
		return fmt.Errorf("%s must be in (0, 100]", EnvPricingMaxCashbackPercent)
	}
	return nil
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"ATACADO_IDEMPOTENCY_TTL" default:"168h"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"ATACADO_CRON_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"ATACADO_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

// OutboxConfig tunes the relay that moves outbox rows onto Redis streams.
type OutboxConfig struct {
	BatchSize      int   `envconfig:"ATACADO_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int   `envconfig:"ATACADO_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int   `envconfig:"ATACADO_OUTBOX_MAX_ATTEMPTS" default:"10"`
	StreamMaxLen   int64 `envconfig:"ATACADO_OUTBOX_STREAM_MAX_LEN" default:"100000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DBDriverSQLite)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
