// Package config handles configuration for the studio server,
// including defaults, JSON overlay, command-line flags, and environment
// variables for secret material.
package config

import "time"

// Config holds runtime settings for the studio server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - StoreDriver / StoreDSN: slot-store backend ("sqlite" or "postgres") and its DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: token lifetime.
//   - AdminEmail / AdminPassword / BypassCode: admin credentials and the
//     developer bypass code. Empty means disabled; these are sourced from
//     configuration or environment, never baked into shipped code.
//   - BiometricEnabled / BiometricReference: face-login enablement flag and
//     the enrolled reference signature.
//   - LockoutThreshold / LockoutWindow: failed attempts before a block and
//     how long the block lasts.
//   - GenAPIEndpoint / GenAPIKey: image-generation collaborator.
//   - RelayEndpoint / RelayAPIKey / RelayTemplateID: email-relay collaborator
//     used for OTP delivery.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage for generated images.
type Config struct {
	EndpointAddrHTTP            string
	StoreDriver                 string
	StoreDSN                    string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration

	AdminEmail         string
	AdminPassword      string
	BypassCode         string
	BiometricEnabled   bool
	BiometricReference string
	LockoutThreshold   int
	LockoutWindow      time.Duration

	OTPValidityDuration time.Duration

	GenAPIEndpoint string
	GenAPIKey      string

	RelayEndpoint   string
	RelayAPIKey     string
	RelayTemplateID string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	DefaultLanguage string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
// Admin credentials and the bypass code default to empty (disabled).
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.StoreDriver = "sqlite"
	c.StoreDSN = "studio.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour

	c.AdminEmail = ""
	c.AdminPassword = ""
	c.BypassCode = ""
	c.BiometricEnabled = false
	c.BiometricReference = ""
	c.LockoutThreshold = 3
	c.LockoutWindow = 24 * time.Hour

	c.OTPValidityDuration = 10 * time.Minute

	c.GenAPIEndpoint = "https://image.pollinations.ai/prompt"
	c.GenAPIKey = ""

	c.RelayEndpoint = "https://api.emailjs.com/api/v1.0/email/send"
	c.RelayAPIKey = ""
	c.RelayTemplateID = ""

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "images"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"

	c.DefaultLanguage = "en"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, command-line flags, and finally environment
// variables (secrets only).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
