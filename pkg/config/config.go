package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	QuoteLimit    QuoteLimitConfig
	Cart          CartConfig
	Review        ReviewConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TEKLIFIX_APP_ENV" required:"true"`
	Port         string `envconfig:"TEKLIFIX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TEKLIFIX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TEKLIFIX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TEKLIFIX_DB_DSN"`
	Driver string `envconfig:"TEKLIFIX_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"TEKLIFIX_DB_HOST"`
	Port     int    `envconfig:"TEKLIFIX_DB_PORT" default:"5432"`
	User     string `envconfig:"TEKLIFIX_DB_USER"`
	Password string `envconfig:"TEKLIFIX_DB_PASSWORD"`
	Name     string `envconfig:"TEKLIFIX_DB_NAME"`
	SSLMode  string `envconfig:"TEKLIFIX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TEKLIFIX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TEKLIFIX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TEKLIFIX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TEKLIFIX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either TEKLIFIX_DB_DSN or host/user/name parts are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"TEKLIFIX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TEKLIFIX_REDIS_ADDR"`
	Password     string        `envconfig:"TEKLIFIX_REDIS_PASSWORD"`
	DB           int           `envconfig:"TEKLIFIX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TEKLIFIX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TEKLIFIX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TEKLIFIX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TEKLIFIX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TEKLIFIX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TEKLIFIX_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TEKLIFIX_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TEKLIFIX_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TEKLIFIX_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TEKLIFIX_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TEKLIFIX_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TEKLIFIX_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TEKLIFIX_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TEKLIFIX_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TEKLIFIX_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// QuoteLimitConfig throttles anonymous quote submissions.
type QuoteLimitConfig struct {
	SubmitWindow  time.Duration `envconfig:"TEKLIFIX_QUOTE_SUBMIT_WINDOW" default:"1m"`
	SubmitIPLimit int           `envconfig:"TEKLIFIX_QUOTE_SUBMIT_IP_LIMIT" default:"10"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"TEKLIFIX_CART_SNAPSHOT_TTL" default:"720h"`
}

// ReviewConfig bounds the lifetime of conversion review overlays.
type ReviewConfig struct {
	OverlayTTL time.Duration `envconfig:"TEKLIFIX_REVIEW_OVERLAY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TEKLIFIX_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TEKLIFIX_AUTO_MIGRATE" default:"false"`
}
