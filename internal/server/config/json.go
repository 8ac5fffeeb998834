package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mzarzor/imagestudio/internal/flagx"
	"github.com/mzarzor/imagestudio/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	StoreDriver                 string         `json:"store_driver"`
	StoreDSN                    string         `json:"store_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AdminEmail                  string         `json:"admin_email"`
	BypassCode                  string         `json:"bypass_code"`
	BiometricEnabled            bool           `json:"biometric_enabled"`
	BiometricReference          string         `json:"biometric_reference"`
	LockoutThreshold            int            `json:"lockout_threshold"`
	LockoutWindow               timex.Duration `json:"lockout_window"`
	OTPValidityDuration         timex.Duration `json:"otp_validity_duration"`
	GenAPIEndpoint              string         `json:"gen_api_endpoint"`
	RelayEndpoint               string         `json:"relay_endpoint"`
	RelayTemplateID             string         `json:"relay_template_id"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	DefaultLanguage             string         `json:"default_language"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flags; when
// neither is set, no JSON file is loaded. A missing or malformed file panics:
// an explicitly requested config file that cannot be read is a startup error.
//
// Zero-valued fields in the file are skipped so the file only needs to name
// the settings it overrides.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIfNotEmpty(&config.StoreDriver, c.StoreDriver)
	setIfNotEmpty(&config.StoreDSN, c.StoreDSN)
	setIfNotEmpty(&config.SecretKey, c.SecretKey)
	setIfNotEmpty(&config.AdminEmail, c.AdminEmail)
	setIfNotEmpty(&config.BypassCode, c.BypassCode)
	setIfNotEmpty(&config.BiometricReference, c.BiometricReference)
	setIfNotEmpty(&config.GenAPIEndpoint, c.GenAPIEndpoint)
	setIfNotEmpty(&config.RelayEndpoint, c.RelayEndpoint)
	setIfNotEmpty(&config.RelayTemplateID, c.RelayTemplateID)
	setIfNotEmpty(&config.S3RootUser, c.S3RootUser)
	setIfNotEmpty(&config.S3RootPassword, c.S3RootPassword)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIfNotEmpty(&config.DefaultLanguage, c.DefaultLanguage)

	if c.BiometricEnabled {
		config.BiometricEnabled = true
	}
	if c.LockoutThreshold > 0 {
		config.LockoutThreshold = c.LockoutThreshold
	}
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.LockoutWindow.Duration > 0 {
		config.LockoutWindow = time.Duration(c.LockoutWindow.Duration)
	}
	if c.OTPValidityDuration.Duration > 0 {
		config.OTPValidityDuration = time.Duration(c.OTPValidityDuration.Duration)
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
