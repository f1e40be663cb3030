package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stores        StoresConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Reports       ReportsConfig
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
	Env          string `envconfig:"CELLSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"CELLSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CELLSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CELLSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CELLSHOP_DB_DSN"`
	Driver string `envconfig:"CELLSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CELLSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"CELLSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CELLSHOP_DB_USER"`
	LegacyPassword string `envconfig:"CELLSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"CELLSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"CELLSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CELLSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CELLSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CELLSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CELLSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CELLSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CELLSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"CELLSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"CELLSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CELLSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CELLSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CELLSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CELLSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CELLSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CELLSHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CELLSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CELLSHOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CELLSHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CELLSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CELLSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CELLSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CELLSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CELLSHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CELLSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CELLSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"CELLSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CELLSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CELLSHOP_AUTO_MIGRATE" default:"false"`
}

// StoresConfig carries the closed list of store accounts allowed to sign in.
// Every product, sale, and maintenance document is partitioned by one of these emails.
type StoresConfig struct {
	AllowedEmails []string `envconfig:"CELLSHOP_ALLOWED_STORE_EMAILS" required:"true"`
}

// Allows reports whether the email belongs to one of the configured stores.
func (s StoresConfig) Allows(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range s.AllowedEmails {
		if strings.ToLower(strings.TrimSpace(allowed)) == needle {
			return true
		}
	}
	return false
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CELLSHOP_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"CELLSHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic string `envconfig:"CELLSHOP_PUBSUB_SALES_TOPIC" default:"cellshop-sale-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CELLSHOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CELLSHOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CELLSHOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type ReportsConfig struct {
	SummaryCacheTTL time.Duration `envconfig:"CELLSHOP_REPORTS_SUMMARY_CACHE_TTL" default:"30s"`
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
