package config

import "os"

// parseEnv overlays secret material from environment variables. Secrets are
// kept out of the JSON file and flags so they never land in shell history or
// versioned config; the environment is the last word.
func parseEnv(config *Config) {
	setIfNotEmpty(&config.SecretKey, os.Getenv("STUDIO_SECRET_KEY"))
	setIfNotEmpty(&config.AdminEmail, os.Getenv("STUDIO_ADMIN_EMAIL"))
	setIfNotEmpty(&config.AdminPassword, os.Getenv("STUDIO_ADMIN_PASSWORD"))
	setIfNotEmpty(&config.BypassCode, os.Getenv("STUDIO_BYPASS_CODE"))
	setIfNotEmpty(&config.GenAPIKey, os.Getenv("STUDIO_GENAPI_KEY"))
	setIfNotEmpty(&config.RelayAPIKey, os.Getenv("STUDIO_RELAY_KEY"))
	setIfNotEmpty(&config.S3RootUser, os.Getenv("STUDIO_S3_USER"))
	setIfNotEmpty(&config.S3RootPassword, os.Getenv("STUDIO_S3_PASSWORD"))
}
