package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "POS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "POS_APP_ENV"
	EnvPort     = "POS_APP_PORT"
	EnvDBDSN    = "POS_DB_DSN"
	EnvDBHost   = "POS_DB_HOST"
	EnvDBUser   = "POS_DB_USER"
	EnvDBName   = "POS_DB_NAME"
	EnvRedisURL = "POS_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Notifier     NotifierConfig
	Settings     SettingsConfig
	Idempotency  IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Settings.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POS_APP_ENV" required:"true"`
	Port         string `envconfig:"POS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"POS_LOG_FORMAT" default:"json"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `envconfig:"POS_APP_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSOrigins     []string      `envconfig:"POS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"POS_DB_DSN"`

	LegacyHost     string `envconfig:"POS_DB_HOST"`
	LegacyPort     int    `envconfig:"POS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POS_DB_USER"`
	LegacyPassword string `envconfig:"POS_DB_PASSWORD"`
	LegacyName     string `envconfig:"POS_DB_NAME"`
	LegacySSLMode  string `envconfig:"POS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQueryThreshold logs statements slower than this at warn; 0 disables.
	SlowQueryThreshold time.Duration `envconfig:"POS_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POS_REDIS_URL"`
	Address      string        `envconfig:"POS_REDIS_ADDR"`
	Password     string        `envconfig:"POS_REDIS_PASSWORD"`
	DB           int           `envconfig:"POS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"POS_REDIS_WRITE_TIMEOUT" default:"3s"`
	KeyPrefix    string        `envconfig:"POS_REDIS_KEY_PREFIX" default:"pos"`
	// SlowCommandThreshold logs commands slower than this at warn; 0 disables.
	SlowCommandThreshold time.Duration `envconfig:"POS_REDIS_SLOW_COMMAND_THRESHOLD" default:"50ms"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"POS_AUTO_MIGRATE" default:"false"`
}

type NotifierConfig struct {
	TablesChannel  string        `envconfig:"POS_NOTIFIER_TABLES_CHANNEL" default:"pos.tables"`
	OrdersChannel  string        `envconfig:"POS_NOTIFIER_ORDERS_CHANNEL" default:"pos.orders"`
	PublishTimeout time.Duration `envconfig:"POS_NOTIFIER_PUBLISH_TIMEOUT" default:"2s"`
}

type SettingsConfig struct {
	CacheTTL time.Duration `envconfig:"POS_SETTINGS_CACHE_TTL" default:"30s"`
	// FallbackVATRate is used only when no business_settings row exists yet.
	FallbackVATRate string `envconfig:"POS_SETTINGS_FALLBACK_VAT_RATE" default:"10"`
}

// VATRate parses the fallback VAT percentage.
func (s SettingsConfig) VATRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.FallbackVATRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (s SettingsConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.FallbackVATRate))
	if err != nil {
		return fmt.Errorf("invalid POS_SETTINGS_FALLBACK_VAT_RATE %q: %w", s.FallbackVATRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("POS_SETTINGS_FALLBACK_VAT_RATE must not be negative")
	}
	return nil
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"POS_IDEMPOTENCY_TTL" default:"24h"`
	// SettlementTTL applies to pay and cancel replays.
	SettlementTTL time.Duration `envconfig:"POS_IDEMPOTENCY_SETTLEMENT_TTL" default:"168h"`
	// LockTTL bounds how long an in-flight claim blocks retries.
	LockTTL time.Duration `envconfig:"POS_IDEMPOTENCY_LOCK_TTL" default:"30s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
