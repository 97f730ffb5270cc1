package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// ORDERDESK_ names so the prefix only matters for fields without one.
const EnvPrefix = "orderdesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "ORDERDESK_APP_ENV"
	EnvPort       = "ORDERDESK_APP_PORT"
	EnvDBDSN      = "ORDERDESK_DB_DSN"
	EnvDBHost     = "ORDERDESK_DB_HOST"
	EnvDBUser     = "ORDERDESK_DB_USER"
	EnvDBName     = "ORDERDESK_DB_NAME"
	EnvRedisURL   = "ORDERDESK_REDIS_URL"
	EnvJWTSecret  = "ORDERDESK_JWT_SECRET"
	EnvJWTIssuer  = "ORDERDESK_JWT_ISSUER"
	EnvJWTExpMins = "ORDERDESK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
