package config

// EnvPrefix is applied by envconfig on top of the explicit keys below.
const EnvPrefix = "KIDORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "KIDORA_DB_DSN"
	EnvDBHost = "KIDORA_DB_HOST"
	EnvDBUser = "KIDORA_DB_USER"
	EnvDBName = "KIDORA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
