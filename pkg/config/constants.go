package config

const EnvPrefix = "PRINTSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:printshop.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv   = "PRINTSHOP_APP_ENV"
	EnvPort     = "PRINTSHOP_APP_PORT"
	EnvLogLevel = "PRINTSHOP_LOG_LEVEL"
	EnvCORS     = "PRINTSHOP_CORS_ORIGINS"

	EnvDBDSN    = "PRINTSHOP_DB_DSN"
	EnvDBDriver = "PRINTSHOP_DB_DRIVER"
	EnvDBHost   = "PRINTSHOP_DB_HOST"
	EnvDBUser   = "PRINTSHOP_DB_USER"
	EnvDBName   = "PRINTSHOP_DB_NAME"

	EnvRedisURL = "PRINTSHOP_REDIS_URL"

	EnvUseSQLite = "PRINTSHOP_USE_SQLITE"

	EnvPricingQuoteCacheTTL  = "PRINTSHOP_PRICING_QUOTE_CACHE_TTL"
	EnvPricingMaxEditRetries = "PRINTSHOP_PRICING_MAX_EDIT_RETRIES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
