package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "ATACADO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	RoundingHalfUp   = "half_up"
	RoundingHalfEven = "half_even"
	RoundingDown     = "down"

	StackingAdditive = "additive"
	StackingBest     = "best"
)

const (
	EnvAppEnv   = "ATACADO_APP_ENV"
	EnvPort     = "ATACADO_APP_PORT"
	EnvLogLevel = "ATACADO_LOG_LEVEL"

	EnvDBDSN    = "ATACADO_DB_DSN"
	EnvDBDriver = "ATACADO_DB_DRIVER"
	EnvDBHost   = "ATACADO_DB_HOST"
	EnvDBUser   = "ATACADO_DB_USER"
	EnvDBName   = "ATACADO_DB_NAME"

	EnvRedisURL = "ATACADO_REDIS_URL"

	EnvPricingCurrencyPlaces     = "ATACADO_PRICING_CURRENCY_PLACES"
	EnvPricingRounding           = "ATACADO_PRICING_ROUNDING"
	EnvPricingCampaignStacking   = "ATACADO_PRICING_CAMPAIGN_STACKING"
	EnvPricingMaxCashbackPercent = "ATACADO_PRICING_MAX_CASHBACK_PERCENT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
