package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for fields without a tag.
const EnvPrefix = "WAREBOUND"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv   = "WAREBOUND_APP_ENV"
	EnvPort     = "WAREBOUND_APP_PORT"
	EnvDBDSN    = "WAREBOUND_DB_DSN"
	EnvDBHost   = "WAREBOUND_DB_HOST"
	EnvDBUser   = "WAREBOUND_DB_USER"
	EnvDBName   = "WAREBOUND_DB_NAME"
	EnvRedisURL = "WAREBOUND_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
