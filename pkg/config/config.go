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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	Outbox        OutboxConfig
	Engagement    EngagementConfig
	Genre         GenreConfig
	Cron          CronConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VOLUNTEERLINKS_APP_ENV" required:"true"`
	Port         string `envconfig:"VOLUNTEERLINKS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VOLUNTEERLINKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VOLUNTEERLINKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VOLUNTEERLINKS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VOLUNTEERLINKS_DB_DSN"`
	Driver string `envconfig:"VOLUNTEERLINKS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VOLUNTEERLINKS_DB_HOST"`
	LegacyPort     int    `envconfig:"VOLUNTEERLINKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VOLUNTEERLINKS_DB_USER"`
	LegacyPassword string `envconfig:"VOLUNTEERLINKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"VOLUNTEERLINKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"VOLUNTEERLINKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VOLUNTEERLINKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VOLUNTEERLINKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VOLUNTEERLINKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VOLUNTEERLINKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"VOLUNTEERLINKS_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
}

// IsSQLite reports whether the record store runs on the embedded driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"VOLUNTEERLINKS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VOLUNTEERLINKS_REDIS_ADDR"`
	Password     string        `envconfig:"VOLUNTEERLINKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"VOLUNTEERLINKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VOLUNTEERLINKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VOLUNTEERLINKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VOLUNTEERLINKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VOLUNTEERLINKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VOLUNTEERLINKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VOLUNTEERLINKS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VOLUNTEERLINKS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VOLUNTEERLINKS_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VOLUNTEERLINKS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VOLUNTEERLINKS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VOLUNTEERLINKS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VOLUNTEERLINKS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VOLUNTEERLINKS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	SigninWindow     time.Duration `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNIN_WINDOW" default:"1m"`
	SigninEmailLimit int           `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNIN_EMAIL_LIMIT" default:"5"`
	SigninIPLimit    int           `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"VOLUNTEERLINKS_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VOLUNTEERLINKS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VOLUNTEERLINKS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"VOLUNTEERLINKS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VOLUNTEERLINKS_OUTBOX_DISPATCH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VOLUNTEERLINKS_OUTBOX_DISPATCH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VOLUNTEERLINKS_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EngagementConfig struct {
	// DecisionLockTTL bounds how long a single decision may hold a record.
	DecisionLockTTL time.Duration `envconfig:"VOLUNTEERLINKS_ENGAGEMENT_DECISION_LOCK_TTL" default:"30s"`

	// InlineFanout delivers notifications in the request path; when false the
	// outbox dispatcher delivers them and the response reports them as queued.
	InlineFanout bool `envconfig:"VOLUNTEERLINKS_ENGAGEMENT_INLINE_FANOUT" default:"true"`
}

type GenreConfig struct {
	ClassifierURL string        `envconfig:"VOLUNTEERLINKS_GENRE_CLASSIFIER_URL"`
	Timeout       time.Duration `envconfig:"VOLUNTEERLINKS_GENRE_CLASSIFIER_TIMEOUT" default:"5s"`
}

// Enabled reports whether genre prediction is configured.
func (g GenreConfig) Enabled() bool {
	return strings.TrimSpace(g.ClassifierURL) != ""
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"VOLUNTEERLINKS_CRON_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"VOLUNTEERLINKS_CRON_LOCK_TTL" default:"10m"`
	OutboxRetention time.Duration `envconfig:"VOLUNTEERLINKS_CRON_OUTBOX_RETENTION" default:"720h"`
	DLQWindow       time.Duration `envconfig:"VOLUNTEERLINKS_CRON_DLQ_WINDOW" default:"24h"`
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
