package config

// EnvPrefix is the envconfig prefix for all application variables.
const EnvPrefix = "ROTTAVA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "ROTTAVA_APP_ENV"
	EnvPort      = "ROTTAVA_APP_PORT"
	EnvDBDSN     = "ROTTAVA_DB_DSN"
	EnvDBHost    = "ROTTAVA_DB_HOST"
	EnvDBUser    = "ROTTAVA_DB_USER"
	EnvDBName    = "ROTTAVA_DB_NAME"
	EnvRedisURL  = "ROTTAVA_REDIS_URL"
	EnvJWTSecret = "ROTTAVA_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
