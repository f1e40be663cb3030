package config

// EnvPrefix is empty because every variable already carries the CELLSHOP_ prefix in
// its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "CELLSHOP_APP_ENV"
	EnvPort   = "CELLSHOP_APP_PORT"

	EnvDBDSN  = "CELLSHOP_DB_DSN"
	EnvDBHost = "CELLSHOP_DB_HOST"
	EnvDBUser = "CELLSHOP_DB_USER"
	EnvDBName = "CELLSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
