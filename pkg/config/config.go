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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
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
	Env          string   `envconfig:"PRINTSHOP_APP_ENV" required:"true"`
	Port         string   `envconfig:"PRINTSHOP_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"PRINTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PRINTSHOP_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"PRINTSHOP_LOG_FORMAT" default:"json"`
	CORSOrigins  []string `envconfig:"PRINTSHOP_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTSHOP_DB_DSN"`
	Driver string `envconfig:"PRINTSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTSHOP_DB_USER"`
	LegacyPassword string `envconfig:"PRINTSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PRINTSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"PRINTSHOP_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PRINTSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"PRINTSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyNamespace string        `envconfig:"PRINTSHOP_REDIS_KEY_NAMESPACE" default:"ps"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PRINTSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PRINTSHOP_AUTO_MIGRATE" default:"false"`
	QuoteCache  bool `envconfig:"PRINTSHOP_FEATURE_QUOTE_CACHE" default:"true"`
}

type PricingConfig struct {
	QuoteCacheTTL  time.Duration `envconfig:"PRINTSHOP_PRICING_QUOTE_CACHE_TTL" default:"10m"`
	MaxEditRetries int           `envconfig:"PRINTSHOP_PRICING_MAX_EDIT_RETRIES" default:"3"`
	IdempotencyTTL time.Duration `envconfig:"PRINTSHOP_PRICING_IDEMPOTENCY_TTL" default:"24h"`
}

func (p PricingConfig) validate() error {
	if p.MaxEditRetries < 0 {
		return fmt.Errorf("%s cannot be negative", EnvPricingMaxEditRetries)
	}
	if p.QuoteCacheTTL < 0 {
		return fmt.Errorf("%s cannot be negative", EnvPricingQuoteCacheTTL)
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
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
