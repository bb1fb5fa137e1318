package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WOOFTRACE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WOOFTRACE_DB_DSN"
	EnvDBHost = "WOOFTRACE_DB_HOST"
	EnvDBUser = "WOOFTRACE_DB_USER"
	EnvDBName = "WOOFTRACE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Email         EmailConfig
	Frontend      FrontendConfig
	Notify        NotifyConfig
	Uploads       UploadsConfig
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
	Env          string `envconfig:"WOOFTRACE_APP_ENV" required:"true"`
	Port         string `envconfig:"WOOFTRACE_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"WOOFTRACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WOOFTRACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WOOFTRACE_DB_DSN"`
	Driver string `envconfig:"WOOFTRACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WOOFTRACE_DB_HOST"`
	LegacyPort     int    `envconfig:"WOOFTRACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WOOFTRACE_DB_USER"`
	LegacyPassword string `envconfig:"WOOFTRACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"WOOFTRACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"WOOFTRACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WOOFTRACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WOOFTRACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WOOFTRACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WOOFTRACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WOOFTRACE_REDIS_URL"`
	Address      string        `envconfig:"WOOFTRACE_REDIS_ADDR"`
	Password     string        `envconfig:"WOOFTRACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"WOOFTRACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WOOFTRACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WOOFTRACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WOOFTRACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WOOFTRACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WOOFTRACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"WOOFTRACE_JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"WOOFTRACE_JWT_ISSUER" default:"wooftrace"`
	ExpirationHours int    `envconfig:"WOOFTRACE_JWT_EXPIRATION_HOURS" default:"168"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationHours <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WOOFTRACE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WOOFTRACE_AUTO_MIGRATE" default:"false"`
}

type EmailConfig struct {
	APIKey      string        `envconfig:"WOOFTRACE_EMAIL_API_KEY"`
	APIBaseURL  string        `envconfig:"WOOFTRACE_EMAIL_API_BASE_URL" default:"https://api.resend.com"`
	FromAddress string        `envconfig:"WOOFTRACE_EMAIL_FROM" default:"WoofTrace <noreply@wooftrace.com>"`
	SendTimeout time.Duration `envconfig:"WOOFTRACE_EMAIL_SEND_TIMEOUT" default:"10s"`
}

// Enabled reports whether outbound email delivery is configured.
func (e EmailConfig) Enabled() bool {
	return strings.TrimSpace(e.APIKey) != ""
}

type FrontendConfig struct {
	BaseURL string `envconfig:"WOOFTRACE_FRONTEND_URL" default:"http://localhost:5173"`
}

type NotifyConfig struct {
	QueueSize    int           `envconfig:"WOOFTRACE_NOTIFY_QUEUE_SIZE" default:"256"`
	MaxAttempts  int           `envconfig:"WOOFTRACE_NOTIFY_MAX_ATTEMPTS" default:"3"`
	RetryBackoff time.Duration `envconfig:"WOOFTRACE_NOTIFY_RETRY_BACKOFF" default:"2s"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"WOOFTRACE_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"WOOFTRACE_MAX_UPLOAD_MB" default:"10"`
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
