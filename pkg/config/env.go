package config

const (
	EnvPrefix = "VOLUNTEERLINKS"

	EnvAppEnv   = "VOLUNTEERLINKS_APP_ENV"
	EnvPort     = "VOLUNTEERLINKS_APP_PORT"
	EnvLogLevel = "VOLUNTEERLINKS_LOG_LEVEL"

	EnvDBDSN    = "VOLUNTEERLINKS_DB_DSN"
	EnvDBDriver = "VOLUNTEERLINKS_DB_DRIVER"
	EnvDBHost   = "VOLUNTEERLINKS_DB_HOST"
	EnvDBUser   = "VOLUNTEERLINKS_DB_USER"
	EnvDBName   = "VOLUNTEERLINKS_DB_NAME"

	EnvRedisURL = "VOLUNTEERLINKS_REDIS_URL"

	EnvJWTSecret  = "VOLUNTEERLINKS_JWT_SECRET"
	EnvJWTIssuer  = "VOLUNTEERLINKS_JWT_ISSUER"
	EnvJWTExpMins = "VOLUNTEERLINKS_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "VOLUNTEERLINKS_USE_SQLITE"
	EnvAutoMigrate = "VOLUNTEERLINKS_AUTO_MIGRATE"

	EnvInlineFanout       = "VOLUNTEERLINKS_ENGAGEMENT_INLINE_FANOUT"
	EnvDecisionLockTTL    = "VOLUNTEERLINKS_ENGAGEMENT_DECISION_LOCK_TTL"
	EnvGenreClassifierURL = "VOLUNTEERLINKS_GENRE_CLASSIFIER_URL"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:volunteerlinks.db?_foreign_keys=on"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
