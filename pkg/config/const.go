package config

const (
	EnvPrefix = "storefront"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	CartStorageDriverRedis  = "redis"
	CartStorageDriverSQLite = "sqlite"
)
